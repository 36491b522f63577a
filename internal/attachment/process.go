package attachment

// Process runs one artifact through its extraction strategy and returns
// the single Extracted result. Classification errors and extraction
// failures surface as ExtractedFailure; the caller decides whether the
// failure blocks the turn.
func Process(artifact Artifact) Extracted {
	category, err := Classify(artifact.MediaType)
	if err != nil {
		return Extracted{Kind: ExtractedFailure, Err: err}
	}

	switch category {
	case CategoryText:
		text, err := ExtractPlainText(artifact.Data)
		if err != nil {
			return Extracted{Kind: ExtractedFailure, Err: err}
		}
		return Extracted{Kind: ExtractedText, Text: text}
	case CategoryDocument:
		text, err := ExtractDocumentText(artifact.Data)
		if err != nil {
			return Extracted{Kind: ExtractedFailure, Err: err}
		}
		return Extracted{Kind: ExtractedText, Text: text}
	case CategoryImage:
		return Extracted{Kind: ExtractedInlineImage, DataURI: EncodeImageDataURI(artifact.Data, artifact.MediaType)}
	default:
		return Extracted{Kind: ExtractedFailure, Err: ErrUnsupportedMediaType}
	}
}
