package utils

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func Test_Utils(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Utils Package")
}

var _ = Describe("Utils:", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp(os.TempDir(), "polarion-fetch-")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	Describe("ContainsAll()", func() {
		It("requires every term", func() {
			Expect(ContainsAll("PolarionALM_2512.zip", []string{"PolarionALM_", ".zip"})).To(BeTrue())
			Expect(ContainsAll("notes.zip", []string{"PolarionALM_", ".zip"})).To(BeFalse())
			Expect(ContainsAll("anything", nil)).To(BeTrue())
		})
	})

	Describe("WriteFile()", func() {
		It("truncates existing files", func() {
			path := filepath.Join(dir, "out.zip")
			Expect(os.WriteFile(path, []byte("a much longer previous content"), 0o644)).To(Succeed())

			Expect(WriteFile(strings.NewReader("new"), path, 0o644)).To(Succeed())

			contents, err := os.ReadFile(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(contents)).To(Equal("new"))
		})
	})

	Describe("Sha256sum()", func() {
		It("hashes the file's contents", func() {
			path := filepath.Join(dir, "artifact.zip")
			Expect(os.WriteFile(path, []byte("polarion"), 0o644)).To(Succeed())

			sum, err := Sha256sum(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(sum).To(Equal(fmt.Sprintf("%x", sha256.Sum256([]byte("polarion")))))
		})
	})

	Describe("VerifySha256sum()", func() {
		It("accepts a matching checksum regardless of case", func() {
			sum := fmt.Sprintf("%X", sha256.Sum256([]byte("polarion")))
			Expect(VerifySha256sum([]byte("polarion"), sum)).To(Succeed())
		})

		It("rejects a mismatching checksum", func() {
			sum := fmt.Sprintf("%x", sha256.Sum256([]byte("other")))
			Expect(VerifySha256sum([]byte("polarion"), sum)).ToNot(Succeed())
		})
	})

	Describe("Unzip()", func() {
		writeZip := func(path string, entries map[string]string) {
			buf := new(bytes.Buffer)
			w := zip.NewWriter(buf)
			for name, contents := range entries {
				f, err := w.Create(name)
				Expect(err).ToNot(HaveOccurred())
				_, err = f.Write([]byte(contents))
				Expect(err).ToNot(HaveOccurred())
			}
			Expect(w.Close()).To(Succeed())
			Expect(os.WriteFile(path, buf.Bytes(), 0o644)).To(Succeed())
		}

		It("extracts nested entries", func() {
			archive := filepath.Join(dir, "artifact.zip")
			writeZip(archive, map[string]string{
				"Polarion/readme.txt":     "hello",
				"Polarion/bin/install.sh": "#!/bin/sh",
			})

			dest := filepath.Join(dir, "out")
			Expect(Unzip(archive, dest)).To(Succeed())

			contents, err := os.ReadFile(filepath.Join(dest, "Polarion", "bin", "install.sh"))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(contents)).To(Equal("#!/bin/sh"))
		})

		It("rejects entries escaping the destination", func() {
			archive := filepath.Join(dir, "evil.zip")
			writeZip(archive, map[string]string{"../escaped.txt": "nope"})

			Expect(Unzip(archive, filepath.Join(dir, "out"))).ToNot(Succeed())
			_, err := os.Stat(filepath.Join(dir, "escaped.txt"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Describe("VerifyGPGSignature()", func() {
		var (
			signature string
			keyRing   string
			entity    *openpgp.Entity
		)

		BeforeEach(func() {
			var err error
			entity, err = openpgp.NewEntity("Release Bot", "", "release@example.com", nil)
			Expect(err).ToNot(HaveOccurred())

			sig := new(bytes.Buffer)
			Expect(openpgp.ArmoredDetachSign(sig, entity, bytes.NewReader([]byte("polarion")), nil)).To(Succeed())
			signature = filepath.Join(dir, "artifact.zip.asc")
			Expect(os.WriteFile(signature, sig.Bytes(), 0o644)).To(Succeed())

			keys := new(bytes.Buffer)
			w, err := armor.Encode(keys, openpgp.PublicKeyType, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(entity.Serialize(w)).To(Succeed())
			Expect(w.Close()).To(Succeed())
			keyRing = filepath.Join(dir, "keyring.asc")
			Expect(os.WriteFile(keyRing, keys.Bytes(), 0o644)).To(Succeed())
		})

		It("accepts a valid signature", func() {
			Expect(VerifyGPGSignature(strings.NewReader("polarion"), signature, keyRing)).To(Succeed())
		})

		It("rejects a modified file", func() {
			Expect(VerifyGPGSignature(strings.NewReader("tampered"), signature, keyRing)).ToNot(Succeed())
		})
	})
})
