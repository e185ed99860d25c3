package scanning

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingRecognizer struct {
	closed atomic.Bool
}

func (c *countingRecognizer) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	return []string{string(imageData)}, nil
}

func (c *countingRecognizer) Close() error {
	c.closed.Store(true)
	return nil
}

var _ = Describe("Shared", func() {
	var (
		builds     atomic.Int32
		recognizer *countingRecognizer
		buildErr   error
		shared     *Shared
	)

	BeforeEach(func() {
		builds.Store(0)
		recognizer = &countingRecognizer{}
		buildErr = nil
		shared = NewShared(func() (Recognizer, error) {
			builds.Add(1)
			if buildErr != nil {
				return nil, buildErr
			}
			return recognizer, nil
		})
	})

	It("does not build until first use", func() {
		Expect(builds.Load()).To(BeZero())
	})

	It("builds once across concurrent callers", func() {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				lines, err := shared.Recognize(context.Background(), []byte("line"), "image/png")
				Expect(err).NotTo(HaveOccurred())
				Expect(lines).To(Equal([]string{"line"}))
			}()
		}
		wg.Wait()
		Expect(builds.Load()).To(Equal(int32(1)))
	})

	When("building fails", func() {
		BeforeEach(func() {
			buildErr = errors.New("no model")
		})

		It("returns the error on every call without rebuilding", func() {
			_, err := shared.Recognize(context.Background(), nil, "")
			Expect(err).To(MatchError(buildErr))
			_, err = shared.Recognize(context.Background(), nil, "")
			Expect(err).To(MatchError(buildErr))
			Expect(builds.Load()).To(Equal(int32(1)))
		})
	})

	Describe("Close", func() {
		It("closes a built recognizer", func() {
			_, err := shared.Recognize(context.Background(), nil, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(shared.Close()).To(Succeed())
			Expect(recognizer.closed.Load()).To(BeTrue())
		})

		It("rejects Recognize after closing a built recognizer", func() {
			_, err := shared.Recognize(context.Background(), nil, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(shared.Close()).To(Succeed())

			_, err = shared.Recognize(context.Background(), nil, "")
			Expect(err).To(MatchError(errRecognizerClosed))
			Expect(builds.Load()).To(Equal(int32(1)))
		})

		It("is a no-op the second time", func() {
			Expect(shared.Close()).To(Succeed())
			Expect(shared.Close()).To(Succeed())
		})

		It("never builds one", func() {
			Expect(shared.Close()).To(Succeed())
			_, err := shared.Recognize(context.Background(), nil, "")
			Expect(err).To(MatchError(errRecognizerClosed))
			Expect(builds.Load()).To(BeZero())
		})
	})
})

var _ = Describe("RecognizerFunc", func() {
	It("delegates to the function", func() {
		var r Recognizer = RecognizerFunc(func(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
			return []string{contentType}, nil
		})
		lines, err := r.Recognize(context.Background(), nil, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"image/png"}))
		Expect(r.Close()).To(Succeed())
	})
})
