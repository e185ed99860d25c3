package scanning

import (
	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func ocrLine(words ...string) computervision.OcrLine {
	ws := make([]computervision.OcrWord, 0, len(words))
	for _, w := range words {
		ws = append(ws, computervision.OcrWord{Text: &w})
	}
	return computervision.OcrLine{Words: &ws}
}

var _ = Describe("linesFromOCRResult", func() {
	It("joins words per line across regions", func() {
		result := computervision.OcrResult{
			Regions: &[]computervision.OcrRegion{
				{Lines: &[]computervision.OcrLine{ocrLine("Invoice", "no:", "123456")}},
				{Lines: &[]computervision.OcrLine{ocrLine("1.", "Widget"), ocrLine("10.00")}},
			},
		}
		Expect(linesFromOCRResult(result)).To(Equal([]string{"Invoice no: 123456", "1. Widget", "10.00"}))
	})

	It("tolerates missing regions", func() {
		Expect(linesFromOCRResult(computervision.OcrResult{})).To(BeEmpty())
	})
})

var _ = Describe("NewAzure", func() {
	It("requires an endpoint and key", func() {
		_, err := NewAzure("", "", true)
		Expect(err).To(HaveOccurred())
	})
})
