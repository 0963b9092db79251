package tesseract

import (
	"context"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRecognizer(1).Recognize(ctx, []byte("ignored"), "tur")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecognizer_InvalidImage(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}

	_, err := NewRecognizer(1).Recognize(context.Background(), []byte("not an image"), "eng")
	assert.Error(t, err)
}

func TestRecognizer_AbandonedCallHoldsSlot(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32

	r := NewRecognizer(1)
	r.run = func(image []byte, lang string) (string, error) {
		if calls.Add(1) == 1 {
			<-release
		}
		return "Ankara - Konya = 350", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.Recognize(ctx, []byte("slow"), "tur")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the first call is still running, so a second one must wait for its slot
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	_, err = r.Recognize(ctx2, []byte("next"), "tur")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	text, err := r.Recognize(context.Background(), []byte("next"), "tur")
	require.NoError(t, err)
	assert.Equal(t, "Ankara - Konya = 350", text)
	assert.Equal(t, int32(2), calls.Load())
}
