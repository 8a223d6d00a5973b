package coordinator_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/coordinator"
	testutils "github.com/papercomputeco/inlay/pkg/utils/test"
)

var _ = Describe("Prefetcher", func() {
	var (
		client *testutils.MockAttributionClient
		coord  *coordinator.Coordinator
	)

	BeforeEach(func() {
		client = testutils.NewMockAttributionClient()
		client.Results[testDoc] = testResult()
		coord = coordinator.New(client)
	})

	AfterEach(func() {
		coord.Close()
	})

	It("requires a coordinator", func() {
		_, err := coordinator.NewPrefetcher(&coordinator.PrefetchConfig{})
		Expect(err).To(HaveOccurred())
	})

	It("warms the cache at low priority", func() {
		p, err := coordinator.NewPrefetcher(&coordinator.PrefetchConfig{Coordinator: coord})
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		Expect(p.Enqueue(testDoc)).To(BeTrue())

		Eventually(func() bool {
			_, ok := coord.Cached(testDoc)
			return ok
		}).Should(BeTrue())

		fetches := client.Fetches()
		Expect(fetches).To(HaveLen(1))
		Expect(fetches[0].Priority).To(Equal(attribution.PriorityLow))
	})

	It("skips documents already cached", func() {
		coord.RequestBlame(context.Background(), testDoc, attribution.PriorityHigh)

		p, err := coordinator.NewPrefetcher(&coordinator.PrefetchConfig{Coordinator: coord})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Enqueue(testDoc)).To(BeTrue())
		p.Close()

		Expect(client.FetchCount()).To(Equal(1))
	})

	It("drops enqueues once the queue is full", func() {
		// Gate the client so the lone worker stays busy and the queue
		// backs up to its capacity.
		client.Gate = make(chan struct{})

		p, err := coordinator.NewPrefetcher(&coordinator.PrefetchConfig{
			Coordinator: coord,
			NumWorkers:  1,
			QueueSize:   1,
		})
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()
		// Release the worker before Close drains the queue.
		defer close(client.Gate)

		var dropped bool
		for i := 0; i < 64; i++ {
			doc := authorship.DocumentID("file:///tmp/doc" + string(rune('a'+i%26)))
			if !p.Enqueue(doc) {
				dropped = true
				break
			}
		}

		Expect(dropped).To(BeTrue())
	})
})
