package controller_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/controller"
	"github.com/papercomputeco/inlay/pkg/coordinator"
	"github.com/papercomputeco/inlay/pkg/editor"
	"github.com/papercomputeco/inlay/pkg/render"
	testutils "github.com/papercomputeco/inlay/pkg/utils/test"
)

const (
	docMain  = authorship.DocumentID("file:///work/main.go")
	docOther = authorship.DocumentID("file:///work/other.go")
)

// mainResult marks 1-based line 3 as written by claude; all other lines
// carry no record and render as human.
func mainResult() authorship.AttributionResult {
	return authorship.AttributionResult{
		3: {Author: "claude", IsAIAuthored: true},
	}
}

// selectLines builds a selection over 0-based lines [start, end] with
// uniform line lengths.
func selectLines(doc authorship.DocumentID, start, end int) editor.SelectionEvent {
	lengths := make([]int, end-start+1)
	for i := range lengths {
		lengths[i] = 10
	}

	return editor.SelectionEvent{
		Document:    doc,
		StartLine:   start,
		EndLine:     end,
		LineLengths: lengths,
	}
}

func annotationTexts(set testutils.SetCall) []string {
	texts := make([]string, len(set.Annotations))
	for i, ann := range set.Annotations {
		texts[i] = ann.Text
	}

	return texts
}

var _ = Describe("Controller", func() {
	var (
		host   *testutils.MockHost
		client *testutils.MockAttributionClient
		coord  *coordinator.Coordinator
		ctrl   *controller.Controller
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		host = testutils.NewMockHost()
		client = testutils.NewMockAttributionClient()
		client.Results[docMain] = mainResult()
		coord = coordinator.New(client)
		ctrl = controller.New(host, coord, nil)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		go ctrl.Run(ctx)
	})

	AfterEach(func() {
		cancel()
		coord.Close()
	})

	Describe("selection changes", func() {
		It("renders a loading placeholder, then the fetched result", func() {
			client.Gate = make(chan struct{})

			// 0-based lines 1..4 are editor lines 2..5.
			host.Selections <- selectLines(docMain, 1, 4)

			Eventually(host.Rendered).Should(Receive())
			first, ok := host.LastSet()
			Expect(ok).To(BeTrue())
			Expect(first.Document).To(Equal(docMain))
			Expect(first.Annotations).To(HaveLen(4))
			Expect(annotationTexts(first)).To(HaveEach(render.LoadingText))

			close(client.Gate)

			Eventually(host.Rendered).Should(Receive())
			final, ok := host.LastSet()
			Expect(ok).To(BeTrue())
			Expect(final.Annotations).To(HaveLen(4))
			// 1-based attribution line 3 is 0-based editor line 2.
			Expect(annotationTexts(final)).To(Equal([]string{
				"Human", "Claude", "Human", "Human",
			}))
		})

		It("anchors each annotation at its line's end of line", func() {
			sel := selectLines(docMain, 0, 2)
			sel.LineLengths = []int{7, 0, 42}
			host.Selections <- sel

			Eventually(host.Rendered).Should(Receive())
			set, _ := host.LastSet()
			Expect(set.Annotations[0].Column).To(Equal(7))
			Expect(set.Annotations[1].Column).To(Equal(0))
			Expect(set.Annotations[2].Column).To(Equal(42))
		})

		It("clears on a single-line selection without fetching", func() {
			host.Selections <- selectLines(docMain, 3, 3)

			Eventually(host.Rendered).Should(Receive())
			Expect(host.ClearCount()).To(Equal(1))
			Expect(host.Sets()).To(BeEmpty())
			Consistently(client.FetchCount).Should(BeZero())
		})

		It("renders synchronously from cache without a loading pass", func() {
			coord.RequestBlame(context.Background(), docMain, attribution.PriorityHigh)
			Expect(client.FetchCount()).To(Equal(1))

			host.Selections <- selectLines(docMain, 1, 4)

			Eventually(host.Rendered).Should(Receive())
			set, _ := host.LastSet()
			Expect(annotationTexts(set)).NotTo(ContainElement(render.LoadingText))
			Expect(host.Sets()).To(HaveLen(1))
			Expect(client.FetchCount()).To(Equal(1))
		})

		It("discards a completion when the selection collapsed mid-fetch", func() {
			client.Gate = make(chan struct{})

			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive()) // loading

			// Collapse to a single line while the fetch is in flight.
			host.Selections <- selectLines(docMain, 2, 2)
			Eventually(host.Rendered).Should(Receive()) // clear
			close(client.Gate)

			// The completion must not re-render the stale selection. The
			// result still lands in cache for reuse.
			Consistently(host.Sets).Should(HaveLen(1))
			Eventually(func() bool {
				_, ok := coord.Cached(docMain)
				return ok
			}).Should(BeTrue())
		})
	})

	Describe("active editor changes", func() {
		It("warms the cache for the newly active document", func() {
			warmHost := testutils.NewMockHost()
			warmClient := testutils.NewMockAttributionClient()
			warmClient.Results[docMain] = mainResult()
			warmCoord := coordinator.New(warmClient)
			defer warmCoord.Close()

			prefetcher, err := coordinator.NewPrefetcher(&coordinator.PrefetchConfig{
				Coordinator: warmCoord,
			})
			Expect(err).NotTo(HaveOccurred())
			defer prefetcher.Close()

			warmed := controller.New(warmHost, warmCoord, nil, controller.WithPrefetcher(prefetcher))
			ctx, stopWarmed := context.WithCancel(context.Background())
			defer stopWarmed()
			go warmed.Run(ctx)

			warmHost.Actives <- editor.ActiveEditorEvent{Document: docMain}

			Eventually(func() bool {
				_, ok := warmCoord.Cached(docMain)
				return ok
			}).Should(BeTrue())
			Expect(warmClient.Fetches()[0].Priority).To(Equal(attribution.PriorityLow))
		})

		It("clears annotations and reuses the cache when returning", func() {
			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive()) // loading
			Eventually(host.Rendered).Should(Receive()) // final

			host.Actives <- editor.ActiveEditorEvent{Document: docOther}
			Eventually(host.Rendered).Should(Receive())
			Expect(host.ClearCount()).To(Equal(1))

			// Returning and reselecting renders from cache: no new fetch.
			host.Actives <- editor.ActiveEditorEvent{Document: docMain}
			Eventually(host.Rendered).Should(Receive())
			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive())

			set, _ := host.LastSet()
			Expect(annotationTexts(set)).NotTo(ContainElement(render.LoadingText))
			Expect(client.FetchCount()).To(Equal(1))
		})
	})

	Describe("document saves", func() {
		It("invalidates and refetches when the saved document is selected", func() {
			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive()) // loading
			Eventually(host.Rendered).Should(Receive()) // final

			host.Saves <- editor.DocumentEvent{Document: docMain}

			Eventually(host.Rendered).Should(Receive())
			loading, _ := host.LastSet()
			Expect(annotationTexts(loading)).To(HaveEach(render.LoadingText))

			Eventually(host.Rendered).Should(Receive())
			Eventually(client.FetchCount).Should(Equal(2))
		})

		It("only invalidates when nothing is selected", func() {
			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive())
			Eventually(host.Rendered).Should(Receive())

			host.Selections <- selectLines(docMain, 2, 2)
			Eventually(host.Rendered).Should(Receive()) // clear

			host.Saves <- editor.DocumentEvent{Document: docMain}

			Eventually(func() bool {
				_, ok := coord.Cached(docMain)
				return ok
			}).Should(BeFalse())
			Consistently(client.FetchCount).Should(Equal(1))
		})
	})

	Describe("document closes", func() {
		It("clears state for the active document", func() {
			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive())
			Eventually(host.Rendered).Should(Receive())

			host.Closes <- editor.DocumentEvent{Document: docMain}

			Eventually(host.ClearCount).Should(Equal(1))
			Eventually(func() bool {
				_, ok := coord.Cached(docMain)
				return ok
			}).Should(BeFalse())
		})

		It("drops a cancelled completion after the document is reselected", func() {
			client.Gate = make(chan struct{})

			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive()) // loading

			// Closing cancels the fetch; its nil completion is still queued
			// when the document is selected again and a new fetch dispatches.
			host.Closes <- editor.DocumentEvent{Document: docMain}
			Eventually(host.ClearCount).Should(Equal(1))

			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive())
			close(client.Gate)

			// The stale nil completion must not render over the fresh
			// request; the real result wins.
			Eventually(func() []string {
				set, ok := host.LastSet()
				if !ok {
					return nil
				}
				return annotationTexts(set)
			}).Should(Equal([]string{"Human", "Claude", "Human", "Human"}))
		})

		It("abandons an in-flight fetch", func() {
			client.Gate = make(chan struct{})

			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive()) // loading

			host.Closes <- editor.DocumentEvent{Document: docMain}
			Eventually(host.ClearCount).Should(Equal(1))
			close(client.Gate)

			// The cancelled fetch never renders and never lands in cache.
			Consistently(host.Sets).Should(HaveLen(1))
			Consistently(func() bool {
				_, ok := coord.Cached(docMain)
				return ok
			}).Should(BeFalse())
		})
	})

	Describe("hover", func() {
		hover := func(doc authorship.DocumentID, line, column int) *editor.Hover {
			reply := make(chan *editor.Hover, 1)
			host.Hovers <- editor.HoverRequest{
				Document: doc,
				Position: editor.Position{Line: line, Column: column},
				Reply:    reply,
			}

			var h *editor.Hover
			Eventually(reply).Should(Receive(&h))

			return h
		}

		BeforeEach(func() {
			host.Selections <- selectLines(docMain, 1, 4)
			Eventually(host.Rendered).Should(Receive())
			Eventually(host.Rendered).Should(Receive())
		})

		It("answers on an annotation anchor", func() {
			h := hover(docMain, 2, 10)
			Expect(h).NotTo(BeNil())
			Expect(h.Markdown).To(ContainSubstring("Claude"))
		})

		It("describes human lines as human", func() {
			h := hover(docMain, 1, 12)
			Expect(h).NotTo(BeNil())
			Expect(h.Markdown).To(ContainSubstring("Human"))
		})

		It("returns nothing before the anchor column", func() {
			Expect(hover(docMain, 2, 3)).To(BeNil())
		})

		It("returns nothing outside the selection", func() {
			Expect(hover(docMain, 7, 10)).To(BeNil())
		})

		It("returns nothing for a different document", func() {
			Expect(hover(docOther, 2, 10)).To(BeNil())
		})
	})
})
