package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("parseLinesJSON", func() {
	var (
		input string
		lines []string
		err   error
	)

	JustBeforeEach(func() {
		lines, err = parseLinesJSON(input)
	})

	When("parsing a valid array", func() {
		BeforeEach(func() {
			input = `["Invoice no: 123456", "1. Widget 2 each 10,00"]`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep the lines verbatim and in order", func() {
			Expect(lines).To(Equal([]string{"Invoice no: 123456", "1. Widget 2 each 10,00"}))
		})
	})

	When("parsing an array wrapped in markdown code blocks", func() {
		BeforeEach(func() {
			input = "```json\n[\"Date 12/05/2024\"]\n```"
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should parse the lines", func() {
			Expect(lines).To(Equal([]string{"Date 12/05/2024"}))
		})
	})

	When("the array is surrounded by chatter", func() {
		BeforeEach(func() {
			input = "Here is the transcription:\n[\"a\", \"b\"]\nLet me know!"
		})

		It("should parse the lines", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(Equal([]string{"a", "b"}))
		})
	})

	When("there is no array", func() {
		BeforeEach(func() {
			input = `{"lines": "nope"}`
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("no JSON array")))
		})
	})

	When("the array is not made of strings", func() {
		BeforeEach(func() {
			input = `[1, 2, 3]`
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
