package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/inlay/pkg/attrstore"
	"github.com/papercomputeco/inlay/pkg/attrstore/sqlite"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

const testDoc = authorship.DocumentID("file:///work/main.go")

func testResult() authorship.AttributionResult {
	model := "claude-sonnet-4-5"

	return authorship.AttributionResult{
		2: {
			Author:       "claude",
			IsAIAuthored: true,
			Prompt: &authorship.PromptRecord{
				AgentModel: &model,
				Messages: []authorship.PromptMessage{
					{Role: authorship.RoleUser, Content: "write the parser"},
				},
			},
		},
	}
}

var _ = Describe("Store", func() {
	var (
		store *sqlite.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = sqlite.NewStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("NewStore", func() {
		It("creates the database file on disk", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "attributions.db")

			s, err := sqlite.NewStore(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	It("round-trips a record including prompt details", func() {
		Expect(store.Put(ctx, testDoc, testResult())).To(Succeed())

		got, err := store.Get(ctx, testDoc)
		Expect(err).NotTo(HaveOccurred())

		info, ok := got.Line(2)
		Expect(ok).To(BeTrue())
		Expect(info.Author).To(Equal("claude"))
		Expect(info.Prompt).NotTo(BeNil())
		Expect(*info.Prompt.AgentModel).To(Equal("claude-sonnet-4-5"))

		msg, found := info.Prompt.FirstUserMessage()
		Expect(found).To(BeTrue())
		Expect(msg).To(Equal("write the parser"))
	})

	It("returns ErrNotFound for a missing document", func() {
		_, err := store.Get(ctx, testDoc)

		var notFound attrstore.ErrNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})

	It("upserts on repeated Put", func() {
		Expect(store.Put(ctx, testDoc, testResult())).To(Succeed())
		Expect(store.Put(ctx, testDoc, authorship.AttributionResult{
			7: {Author: "claude", IsAIAuthored: true},
		})).To(Succeed())

		got, err := store.Get(ctx, testDoc)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
		_, ok := got.Line(7)
		Expect(ok).To(BeTrue())
	})

	It("deletes records, tolerating missing documents", func() {
		Expect(store.Put(ctx, testDoc, testResult())).To(Succeed())
		Expect(store.Delete(ctx, testDoc)).To(Succeed())

		_, err := store.Get(ctx, testDoc)
		Expect(err).To(HaveOccurred())

		Expect(store.Delete(ctx, testDoc)).To(Succeed())
	})
})
