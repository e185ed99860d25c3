package invoice

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		baseDir string
		store   *LocalStorage
	)

	BeforeEach(func() {
		baseDir = filepath.Join(GinkgoT().TempDir(), "invoices")
		var err error
		store, err = NewLocalStorage(baseDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates its directory", func() {
		Expect(baseDir).To(BeADirectory())
	})

	It("reuses an existing directory", func() {
		again, err := NewLocalStorage(baseDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).NotTo(BeNil())
	})

	Describe("Save then Get", func() {
		var (
			name string
			err  error
		)

		JustBeforeEach(func() {
			name, err = store.Save("inv-1_scan.pdf", []byte("%PDF-1.7"))
		})

		It("returns the name to read it back with", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("inv-1_scan.pdf"))

			data, getErr := store.Get(name)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("%PDF-1.7"))
		})

		It("writes into the base directory", func() {
			Expect(filepath.Join(baseDir, "inv-1_scan.pdf")).To(BeAnExistingFile())
		})

		When("a file with the same name exists", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(filepath.Join(baseDir, "inv-1_scan.pdf"), []byte("old"), 0644)).To(Succeed())
			})

			It("replaces it", func() {
				data, getErr := store.Get("inv-1_scan.pdf")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("%PDF-1.7"))
			})
		})
	})

	Describe("Get", func() {
		It("wraps a missing file", func() {
			_, err := store.Get("missing.png")
			Expect(err).To(MatchError(ContainSubstring("reading file")))
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("Delete", func() {
		It("removes a stored file", func() {
			_, err := store.Save("inv-2_photo.heic", []byte("heic"))
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Delete("inv-2_photo.heic")).To(Succeed())
			Expect(filepath.Join(baseDir, "inv-2_photo.heic")).NotTo(BeAnExistingFile())
		})

		It("wraps a missing file", func() {
			Expect(store.Delete("missing.png")).To(MatchError(ContainSubstring("deleting file")))
		})
	})

	DescribeTable("rejects names that are not plain files",
		func(name string) {
			_, saveErr := store.Save(name, []byte("x"))
			Expect(saveErr).To(MatchError(ContainSubstring("invalid file name")))

			_, getErr := store.Get(name)
			Expect(getErr).To(MatchError(ContainSubstring("invalid file name")))

			Expect(store.Delete(name)).To(MatchError(ContainSubstring("invalid file name")))
		},
		Entry("empty", ""),
		Entry("current directory", "."),
		Entry("parent directory", ".."),
		Entry("parent traversal", "../outside.png"),
		Entry("nested path", "nested/inside.png"),
	)
})
