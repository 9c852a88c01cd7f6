package utils_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"nutriportions/utils"
)

func TestDecodeDataURI(t *testing.T) {
	t.Parallel()
	img, err := utils.DecodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes")))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.ContentType != "image/png" || img.Ext != ".png" || string(img.Data) != "png-bytes" {
		t.Fatalf("unexpected image %+v", img)
	}
	if _, err := utils.DecodeDataURI("data:text/plain;base64,aGk="); err == nil {
		t.Fatalf("expected non-image content to be rejected")
	}
}

func TestDecodeDataURIRejectsOversizedImage(t *testing.T) {
	t.Parallel()
	big := strings.Repeat("A", (utils.MaxImageBytes/3+1)*4)
	_, err := utils.DecodeDataURI("data:image/jpeg;base64," + big)
	if !errors.Is(err, utils.ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
}
