package taskcluster

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Endpoints{Index: srv.URL + "/index/v1", Queue: srv.URL + "/queue/v1", Artifacts: srv.URL + "/queue/v1"}, srv.Client())
}

func TestClient_FindTask(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/index/v1/task/github.glandium.git-cinnabar.helper", r.URL.Path)
			_, _ = io.WriteString(w, `{"namespace":"github.glandium.git-cinnabar.helper","taskId":"abc","rank":0,"expires":"2018-06-01T00:00:00.000Z"}`)
		})

		found, err := client.FindTask(context.Background(), "github.glandium.git-cinnabar.helper")
		require.NoError(t, err)
		assert.Equal(t, "abc", found.TaskID)
		assert.Equal(t, "2018-06-01T00:00:00.000Z", found.Expires)
	})

	t.Run("not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"code":"ResourceNotFound"}`, http.StatusNotFound)
		})

		_, err := client.FindTask(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `not json`)
		})

		_, err := client.FindTask(context.Background(), "ns")
		assert.ErrorContains(t, err, "failed to decode index answer")
	})
}

func TestClient_CreateTask(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		var got Task
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/queue/v1/task/abc", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = io.WriteString(w, `{"status":{"taskId":"abc","taskGroupId":"group","state":"pending"}}`)
		})

		status, err := client.CreateTask(context.Background(), "abc", &Task{TaskGroupID: "group", Dependencies: []string{"group"}})
		require.NoError(t, err)
		assert.Equal(t, "pending", status.Status.State)
		assert.Equal(t, "group", got.TaskGroupID)
	})

	t.Run("rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Request-Id", "req-1")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"code":"InputValidationError"}`)
		})

		_, err := client.CreateTask(context.Background(), "abc", &Task{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "abc", apiErr.TaskID)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "req-1", apiErr.Header.Get("X-Request-Id"))
		assert.Contains(t, string(apiErr.Body), "InputValidationError")
		assert.ErrorContains(t, err, "status 400")
	})
}
