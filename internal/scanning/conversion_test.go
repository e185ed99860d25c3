package scanning

import (
	"bytes"
	"image"
	"image/jpeg"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Conversion", func() {
	Describe("isHEICFormat", func() {
		It("detects the ftyp box with a HEIC brand", func() {
			data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
			Expect(isHEICFormat(data)).To(BeTrue())
		})

		It("rejects short data", func() {
			Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
		})

		It("rejects other brands", func() {
			data := append([]byte{0, 0, 0, 24}, []byte("ftypisom0000")...)
			Expect(isHEICFormat(data)).To(BeFalse())
		})
	})

	Describe("normalizeMimeType", func() {
		It("defaults to JPEG", func() {
			Expect(normalizeMimeType("  ")).To(Equal("image/jpeg"))
		})

		It("lowercases and trims", func() {
			Expect(normalizeMimeType(" Application/PDF ")).To(Equal(mimePDF))
		})
	})

	Describe("convertToPNG", func() {
		It("passes PNG data through", func() {
			data := pagePNG(8, 8)
			out, converted, err := convertToPNG(data, "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(converted).To(BeFalse())
			Expect(out).To(Equal(data))
		})

		It("converts JPEG to PNG", func() {
			img, _, err := image.Decode(bytes.NewReader(pagePNG(16, 16)))
			Expect(err).NotTo(HaveOccurred())
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())

			out, converted, err := convertToPNG(buf.Bytes(), "image/jpeg")
			Expect(err).NotTo(HaveOccurred())
			Expect(converted).To(BeTrue())
			Expect(out[:8]).To(Equal([]byte("\x89PNG\r\n\x1a\n")))
		})

		It("reports undecodable data as unreadable", func() {
			_, _, err := convertToPNG([]byte("not an image"), "image/jpeg")
			Expect(err).To(MatchError(ErrUnreadableImage))
		})
	})
})
