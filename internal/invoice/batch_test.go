package invoice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/invoice-scanner/internal/extraction"
)

// fakeExtractor runs every image through extraction.Extract using the file
// content as the recognized text, failing on content "broken".
type fakeExtractor struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, contentType string) (*extraction.InvoiceRecord, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if string(data) == "broken" {
		return nil, errors.New("unreadable")
	}
	return extraction.Extract([]string{string(data)}), nil
}

var _ = Describe("Batch", func() {
	var (
		inputDir  string
		outputDir string
		extractor *fakeExtractor
		batch     *Batch
		ctx       context.Context
		summary   BatchSummary
		err       error
	)

	write := func(name, content string) {
		path := filepath.Join(inputDir, name)
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		inputDir = GinkgoT().TempDir()
		outputDir = filepath.Join(GinkgoT().TempDir(), "out")
		extractor = &fakeExtractor{}
		batch = &Batch{Extractor: extractor, OutputDir: outputDir, Workers: 2}
		ctx = context.Background()
	})

	JustBeforeEach(func() {
		summary, err = batch.Run(ctx, inputDir)
	})

	When("the directory holds images and other files", func() {
		BeforeEach(func() {
			write("a.jpg", "Invoice No: 123456")
			write("B.PNG", "Date 12/05/2024")
			write("nested/c.jpeg", "1. Widget 2 each 10.00 20.00 2.00 22.00")
			write("notes.txt", "ignored")
			write("scan.pdf", "Invoice No: 654321")
		})

		It("processes every image", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(Equal(BatchSummary{Found: 4, Saved: 4, Failed: 0}))
		})

		It("writes one record per image", func() {
			Expect(filepath.Join(outputDir, "a_output.json")).To(BeAnExistingFile())
			Expect(filepath.Join(outputDir, "B_output.json")).To(BeAnExistingFile())
			Expect(filepath.Join(outputDir, "c_output.json")).To(BeAnExistingFile())
			Expect(filepath.Join(outputDir, "scan_output.json")).To(BeAnExistingFile())
			Expect(filepath.Join(outputDir, "notes_output.json")).NotTo(BeAnExistingFile())
		})

		It("writes the record with four-space indentation", func() {
			data, readErr := os.ReadFile(filepath.Join(outputDir, "a_output.json"))
			Expect(readErr).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("{\n" +
				"    \"Invoice Number\": \"123456\",\n" +
				"    \"Invoice Date\": \"Not Found\",\n" +
				"    \"Line Items\": []\n" +
				"}\n"))
		})

		It("never runs more than Workers extractions at once", func() {
			Expect(extractor.peak.Load()).To(BeNumerically("<=", 2))
		})
	})

	When("one image fails", func() {
		BeforeEach(func() {
			write("good.jpg", "Invoice No: 123456")
			write("bad.jpg", "broken")
		})

		It("counts the failure and keeps going", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(Equal(BatchSummary{Found: 2, Saved: 1, Failed: 1}))
			Expect(filepath.Join(outputDir, "good_output.json")).To(BeAnExistingFile())
			Expect(filepath.Join(outputDir, "bad_output.json")).NotTo(BeAnExistingFile())
		})
	})

	When("two images in different folders share a name", func() {
		BeforeEach(func() {
			write("a/x.jpg", "Invoice No: 123456")
			write("b/x.png", "Invoice No: 654321")
		})

		It("keeps the first record and counts the second as failed", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(Equal(BatchSummary{Found: 2, Saved: 1, Failed: 1}))
			Expect(extractor.calls.Load()).To(Equal(int32(1)))

			data, readErr := os.ReadFile(filepath.Join(outputDir, "x_output.json"))
			Expect(readErr).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"123456"`))
		})
	})

	When("descriptions contain HTML characters", func() {
		BeforeEach(func() {
			write("html.jpg", "1. Nuts & <bolts> 9.99")
		})

		It("does not escape them", func() {
			data, readErr := os.ReadFile(filepath.Join(outputDir, "html_output.json"))
			Expect(readErr).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"Nuts & <bolts>"`))
		})
	})

	When("the directory is empty", func() {
		It("creates the output directory and reports nothing", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(Equal(BatchSummary{}))
			Expect(outputDir).To(BeADirectory())
		})
	})

	When("the context is already cancelled", func() {
		BeforeEach(func() {
			write("a.jpg", "Invoice No: 123456")
			cancelled, cancel := context.WithCancel(context.Background())
			cancel()
			ctx = cancelled
		})

		It("returns the cancellation", func() {
			Expect(err).To(MatchError(context.Canceled))
			Expect(extractor.calls.Load()).To(BeZero())
		})
	})

	When("the input directory does not exist", func() {
		BeforeEach(func() {
			inputDir = filepath.Join(inputDir, "missing")
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("Workers is not set", func() {
		BeforeEach(func() {
			batch.Workers = 0
			for _, name := range []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"} {
				write(name, "Invoice No: 123456")
			}
		})

		It("uses the default", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Saved).To(Equal(6))
			Expect(extractor.peak.Load()).To(BeNumerically("<=", DefaultWorkers))
		})
	})
})
