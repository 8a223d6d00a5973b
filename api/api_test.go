package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/pkg/attrstore/inmemory"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

const apiTestDoc = authorship.DocumentID("file:///work/main.go")

func apiTestRecord() authorship.Record {
	return authorship.Record{
		Document: apiTestDoc,
		Lines: authorship.AttributionResult{
			3: {Author: "claude", IsAIAuthored: true},
		},
	}
}

var _ = Describe("Server", func() {
	var (
		server *Server
		store  *inmemory.Store
	)

	BeforeEach(func() {
		logger, _ := zap.NewDevelopment()
		store = inmemory.NewStore()
		server = NewServer(Config{ListenAddr: ":0"}, store, logger)
	})

	get := func(doc string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, "/v1/attributions?document="+url.QueryEscape(doc), nil)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set(PriorityHeader, "high")

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())

		return resp
	}

	post := func(record authorship.Record) *http.Response {
		body, err := json.Marshal(record)
		Expect(err).NotTo(HaveOccurred())

		req, err := http.NewRequest(http.MethodPost, "/v1/attributions", bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())

		return resp
	}

	del := func(doc string) *http.Response {
		req, err := http.NewRequest(http.MethodDelete, "/v1/attributions?document="+url.QueryEscape(doc), nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())

		return resp
	}

	Describe("GET /ping", func() {
		It("responds with pong", func() {
			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(ContainSubstring("pong"))
		})
	})

	Describe("POST /v1/attributions", func() {
		It("stores a record", func() {
			resp := post(apiTestRecord())
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			stored, err := store.Get(context.Background(), apiTestDoc)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveLen(1))
		})

		It("rejects a record without a document", func() {
			resp := post(authorship.Record{})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("replaces the prior record wholesale", func() {
			Expect(post(apiTestRecord()).StatusCode).To(Equal(http.StatusNoContent))

			replacement := authorship.Record{
				Document: apiTestDoc,
				Lines: authorship.AttributionResult{
					8: {Author: "claude", IsAIAuthored: true},
				},
			}
			Expect(post(replacement).StatusCode).To(Equal(http.StatusNoContent))

			stored, err := store.Get(context.Background(), apiTestDoc)
			Expect(err).NotTo(HaveOccurred())
			_, ok := stored.Line(8)
			Expect(ok).To(BeTrue())
			_, ok = stored.Line(3)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("GET /v1/attributions", func() {
		It("returns a stored record", func() {
			Expect(post(apiTestRecord()).StatusCode).To(Equal(http.StatusNoContent))

			resp := get(apiTestDoc.String())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var record authorship.Record
			Expect(json.NewDecoder(resp.Body).Decode(&record)).To(Succeed())
			Expect(record.Document).To(Equal(apiTestDoc))

			info, ok := record.Lines.Line(3)
			Expect(ok).To(BeTrue())
			Expect(info.Author).To(Equal("claude"))
		})

		It("returns 404 for an untracked document", func() {
			resp := get("file:///nowhere.go")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			var errResp ErrorResponse
			Expect(json.NewDecoder(resp.Body).Decode(&errResp)).To(Succeed())
			Expect(errResp.Error).NotTo(BeEmpty())
		})

		It("requires the document parameter", func() {
			resp := get("")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DELETE /v1/attributions", func() {
		It("removes a stored record", func() {
			Expect(post(apiTestRecord()).StatusCode).To(Equal(http.StatusNoContent))
			Expect(del(apiTestDoc.String()).StatusCode).To(Equal(http.StatusNoContent))

			resp := get(apiTestDoc.String())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("succeeds for an untracked document", func() {
			Expect(del("file:///nowhere.go").StatusCode).To(Equal(http.StatusNoContent))
		})
	})
})
