package attachment

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mediaType MediaType
		want      Category
		wantErr   bool
	}{
		{name: "plain text", mediaType: MediaTypePlainText, want: CategoryText},
		{name: "pdf", mediaType: MediaTypePDF, want: CategoryDocument},
		{name: "png", mediaType: MediaTypePNG, want: CategoryImage},
		{name: "jpeg", mediaType: MediaTypeJPEG, want: CategoryImage},
		{name: "uppercase is normalized", mediaType: "IMAGE/PNG", want: CategoryImage},
		{name: "gif rejected", mediaType: "image/gif", wantErr: true},
		{name: "docx rejected", mediaType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", wantErr: true},
		{name: "empty rejected", mediaType: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Classify(tt.mediaType)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedMediaType) {
					t.Fatalf("expected ErrUnsupportedMediaType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
