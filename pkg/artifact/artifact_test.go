package artifact

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func Test_Artifact(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Artifact Package")
}

var _ = Describe("Parsing version selectors:", func() {
	DescribeTable("ParseSelector()",
		func(selector string, expectedDigits string, expectedExact bool) {
			digits, exact := ParseSelector(selector)
			Expect(exact).To(Equal(expectedExact))
			Expect(digits).To(Equal(expectedDigits))
		},
		Entry("version branch", "v2512", "2512", true),
		Entry("single digit", "v1", "1", true),
		Entry("main branch", "main", "", false),
		Entry("bare 'v'", "v", "", false),
		Entry("dotted version", "v25.12", "", false),
		Entry("uppercase prefix", "V2512", "", false),
		Entry("no prefix", "2512", "", false),
		Entry("empty selector", "", "", false),
	)

	It("builds the archive name from the selector's digits", func() {
		digits, exact := ParseSelector("v2512")
		Expect(exact).To(BeTrue())
		Expect(FileName(digits)).To(Equal("PolarionALM_2512.zip"))
	})
})

var _ = Describe("Extracting versions from file names:", func() {
	DescribeTable("ExtractVersion()",
		func(name string, expected int64) {
			Expect(ExtractVersion(name)).To(Equal(expected))
		},
		Entry("well-formed name", "PolarionALM_2512.zip", int64(2512)),
		Entry("leading zeros", "PolarionALM_0042.zip", int64(42)),
		Entry("path prefix", "releases/PolarionALM_2410.zip", int64(2410)),
		Entry("unrelated zip", "foo.zip", int64(-1)),
		Entry("non-numeric version", "PolarionALM_abc.zip", int64(-1)),
		Entry("empty version", "PolarionALM_.zip", int64(-1)),
		Entry("mixed version", "PolarionALM_2512b.zip", int64(-1)),
		Entry("wrong extension", "PolarionALM_2512.tar.gz", int64(-1)),
		Entry("trailing suffix", "PolarionALM_2512.zip.sig", int64(-1)),
		Entry("version overflows", "PolarionALM_99999999999999999999.zip", int64(-1)),
	)
})

var _ = Describe("Selecting the latest candidate:", func() {
	var files []File

	BeforeEach(func() {
		files = []File{
			{ID: "a", Name: "PolarionALM_2500.zip"},
			{ID: "b", Name: "notes.zip"},
			{ID: "c", Name: "PolarionALM_2512.zip"},
			{ID: "d", Name: "PolarionALM_beta.zip"},
		}
	})

	It("drops files without a parsable version", func() {
		candidates := Candidates(files)
		Expect(candidates).To(HaveLen(2))
		Expect(candidates[0].ID).To(Equal("a"))
		Expect(candidates[1].ID).To(Equal("c"))
	})

	It("picks the highest version", func() {
		latest, found := SelectLatest(Candidates(files))
		Expect(found).To(BeTrue())
		Expect(latest.Name).To(Equal("PolarionALM_2512.zip"))
		Expect(latest.Version).To(Equal(int64(2512)))
	})

	It("returns the same file when run repeatedly", func() {
		candidates := Candidates(files)
		first, _ := SelectLatest(candidates)
		second, _ := SelectLatest(candidates)
		Expect(second).To(Equal(first))
	})

	It("prefers the first file when versions tie", func() {
		candidates := Candidates([]File{
			{ID: "x", Name: "PolarionALM_0100.zip"},
			{ID: "y", Name: "PolarionALM_100.zip"},
		})
		latest, found := SelectLatest(candidates)
		Expect(found).To(BeTrue())
		Expect(latest.ID).To(Equal("x"))
	})

	It("reports when there is nothing to select", func() {
		_, found := SelectLatest(Candidates([]File{{ID: "b", Name: "notes.zip"}}))
		Expect(found).To(BeFalse())
	})
})
