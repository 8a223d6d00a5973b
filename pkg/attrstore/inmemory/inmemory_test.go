package inmemory_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/inlay/pkg/attrstore"
	"github.com/papercomputeco/inlay/pkg/attrstore/inmemory"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

const testDoc = authorship.DocumentID("file:///work/main.go")

func testResult() authorship.AttributionResult {
	return authorship.AttributionResult{
		1: {Author: "claude", IsAIAuthored: true},
		4: {Author: "claude", IsAIAuthored: true},
	}
}

var _ = Describe("Store", func() {
	var (
		store *inmemory.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewStore()
	})

	AfterEach(func() {
		store.Close()
	})

	It("round-trips a record", func() {
		Expect(store.Put(ctx, testDoc, testResult())).To(Succeed())

		got, err := store.Get(ctx, testDoc)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(testResult()))
	})

	It("returns ErrNotFound for a missing document", func() {
		_, err := store.Get(ctx, testDoc)

		var notFound attrstore.ErrNotFound
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.Document).To(Equal(testDoc))
	})

	It("replaces the whole record on Put", func() {
		Expect(store.Put(ctx, testDoc, testResult())).To(Succeed())
		Expect(store.Put(ctx, testDoc, authorship.AttributionResult{
			9: {Author: "claude", IsAIAuthored: true},
		})).To(Succeed())

		got, err := store.Get(ctx, testDoc)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
		_, ok := got.Line(9)
		Expect(ok).To(BeTrue())
	})

	It("deletes records, tolerating missing documents", func() {
		Expect(store.Put(ctx, testDoc, testResult())).To(Succeed())
		Expect(store.Delete(ctx, testDoc)).To(Succeed())

		_, err := store.Get(ctx, testDoc)
		Expect(err).To(HaveOccurred())

		Expect(store.Delete(ctx, testDoc)).To(Succeed())
	})

	It("returns copies that callers cannot mutate", func() {
		Expect(store.Put(ctx, testDoc, testResult())).To(Succeed())

		got, err := store.Get(ctx, testDoc)
		Expect(err).NotTo(HaveOccurred())
		got[99] = authorship.LineAuthorInfo{Author: "mallory"}

		fresh, err := store.Get(ctx, testDoc)
		Expect(err).NotTo(HaveOccurred())
		Expect(fresh).NotTo(HaveKey(99))
	})
})
