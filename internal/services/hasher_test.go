package services

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"testing"
)

func TestStageAndHash(t *testing.T) {
	payload := []byte("some payload that gets staged while hashed")
	src := NewBufferSource("data.bin", "", "application/octet-stream", payload)

	staged, err := stageAndHash(src)
	if err != nil {
		t.Fatalf("stageAndHash: %v", err)
	}
	defer os.Remove(staged.Path)

	sum := md5.Sum(payload)
	if want := hex.EncodeToString(sum[:]); staged.Digest != want {
		t.Errorf("digest = %q, want %q", staged.Digest, want)
	}
	if staged.Size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", staged.Size, len(payload))
	}

	data, err := os.ReadFile(staged.Path)
	if err != nil {
		t.Fatalf("staging file missing: %v", err)
	}
	if string(data) != string(payload) {
		t.Error("staging file content does not match payload")
	}
}

func TestStageAndHashEmptyPayload(t *testing.T) {
	staged, err := stageAndHash(NewBufferSource("empty", "", "", nil))
	if err != nil {
		t.Fatalf("stageAndHash: %v", err)
	}
	defer os.Remove(staged.Path)

	if staged.Size != 0 {
		t.Errorf("size = %d, want 0", staged.Size)
	}
	// md5 of the empty string
	if staged.Digest != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("digest = %q", staged.Digest)
	}
}
