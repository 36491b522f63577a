package turn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/plumechat/plume/internal/attachment"
)

// ConstraintChecker verifies that a Part sequence can be lowered for the
// target provider before the turn is accepted.
type ConstraintChecker interface {
	Check(parts []Part) error
}

// Pipeline runs one turn from raw submission to an accepted Part
// sequence. Every stage either advances the turn or rejects it; there is
// no partial acceptance of a turn's artifacts.
type Pipeline struct {
	assembler        *Assembler
	memories         ContextLoader
	saver            PartSaver
	checker          ConstraintChecker
	logger           *slog.Logger
	maxArtifactBytes int64
	minImportance    int
	contextLimit     int
}

// PipelineOptions bundles the tunables for NewPipeline.
type PipelineOptions struct {
	MaxArtifactBytes int64
	MinImportance    int
	ContextLimit     int
}

func NewPipeline(log *slog.Logger, assembler *Assembler, memories ContextLoader, saver PartSaver, checker ConstraintChecker, opts PipelineOptions) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if opts.MaxArtifactBytes <= 0 {
		opts.MaxArtifactBytes = attachment.MaxArtifactBytes
	}
	if opts.MinImportance <= 0 {
		opts.MinImportance = 5
	}
	if opts.ContextLimit <= 0 {
		opts.ContextLimit = 20
	}
	return &Pipeline{
		assembler:        assembler,
		memories:         memories,
		saver:            saver,
		checker:          checker,
		logger:           log.With(slog.String("service", "turn_pipeline")),
		maxArtifactBytes: opts.MaxArtifactBytes,
		minImportance:    opts.MinImportance,
		contextLimit:     opts.ContextLimit,
	}
}

// AssembleTurn runs the full pipeline for one submission. On rejection
// the returned result carries StateRejected and the error names the
// offending artifact; the caller decides the transport mapping.
func (p *Pipeline) AssembleTurn(ctx context.Context, input AssembleInput) (AssembleResult, error) {
	log := p.logger.With(
		slog.String("chat_id", input.ChatID),
		slog.String("turn_id", input.TurnID),
	)
	rejected := AssembleResult{TurnID: input.TurnID, State: StateRejected}

	// Cheap synchronous checks first so an oversized or unsupported
	// artifact never reaches an extractor.
	for _, artifact := range input.Artifacts {
		if artifact.SizeBytes > p.maxArtifactBytes {
			return rejected, fmt.Errorf("artifact %q: %w (%d bytes, limit %d)",
				artifact.Name, attachment.ErrArtifactTooLarge, artifact.SizeBytes, p.maxArtifactBytes)
		}
		if _, err := attachment.Classify(artifact.MediaType); err != nil {
			return rejected, fmt.Errorf("artifact %q: %w", artifact.Name, err)
		}
	}

	log.Debug("extracting artifacts", slog.Int("count", len(input.Artifacts)))
	extracted := p.extractAll(input.Artifacts)
	for i, result := range extracted {
		if result.Kind == attachment.ExtractedFailure {
			log.Info("turn rejected",
				slog.String("artifact", input.Artifacts[i].Name),
				slog.Any("error", result.Err),
			)
			return rejected, fmt.Errorf("artifact %q: %w", input.Artifacts[i].Name, result.Err)
		}
	}

	// Memory is best effort. A degraded memory store must not block the
	// turn, so the context is simply absent on failure.
	memoryContext := ""
	if p.memories != nil {
		rendered, err := p.memories.LoadContext(ctx, input.UserID, p.minImportance, p.contextLimit)
		if err != nil {
			log.Warn("memory context unavailable", slog.Any("error", err))
		} else {
			memoryContext = rendered
		}
	}

	parts, err := p.assembler.Assemble(input.Artifacts, extracted, input.Texts)
	if err != nil {
		return rejected, err
	}

	if p.saver != nil {
		if err := p.saver.SaveTurnParts(ctx, input.ChatID, input.TurnID, parts); err != nil {
			return AssembleResult{TurnID: input.TurnID, State: StateAssembling}, fmt.Errorf("persist turn parts: %w", err)
		}
	}

	if p.checker != nil {
		if err := p.checker.Check(parts); err != nil {
			return rejected, err
		}
	}

	log.Debug("turn assembled", slog.Int("parts", len(parts)))
	return AssembleResult{
		TurnID:        input.TurnID,
		State:         StateSubmitted,
		Parts:         parts,
		MemoryContext: memoryContext,
	}, nil
}

// extractAll runs extraction for each artifact concurrently. Results are
// written to the artifact's own index so output order matches submission
// order regardless of completion order.
func (p *Pipeline) extractAll(artifacts []attachment.Artifact) []attachment.Extracted {
	results := make([]attachment.Extracted, len(artifacts))
	var wg sync.WaitGroup
	for i := range artifacts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = attachment.Process(artifacts[i])
		}(i)
	}
	wg.Wait()
	return results
}
