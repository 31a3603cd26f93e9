package fakequeue

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/digideskio/git-cinnabar/internal/inmemorystore"
	"github.com/digideskio/git-cinnabar/internal/taskcluster"
	"github.com/gin-gonic/gin"
)

// Store holds the queued tasks and index records served by the router.
type Store interface {
	PutTask(ctx context.Context, taskID string, task *taskcluster.Task) (bool, error)
	GetTask(ctx context.Context, taskID string) (*taskcluster.Task, bool)
	IndexTask(ctx context.Context, rec taskcluster.IndexedTask)
	FindTask(ctx context.Context, namespace string) (taskcluster.IndexedTask, bool)
}

const (
	indexPrefix = "/index/v1"
	queuePrefix = "/queue/v1"
	routePrefix = "index."
)

// Endpoints returns the endpoints of a fake queue served at baseURL.
func Endpoints(baseURL string) taskcluster.Endpoints {
	base := strings.TrimRight(baseURL, "/")
	return taskcluster.Endpoints{
		Index:     base + indexPrefix,
		Queue:     base + queuePrefix,
		Artifacts: base + queuePrefix,
	}
}

// errorBody mirrors the error answers of the real services.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type handler struct {
	store  Store
	logger *slog.Logger
}

// NewRouter creates the HTTP handler of the fake services.
func NewRouter(store Store, logger *slog.Logger) *gin.Engine {
	h := &handler{store: store, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", h.health)

	index := router.Group(indexPrefix)
	{
		index.GET("/task/:namespace", h.findTask)
	}

	queue := router.Group(queuePrefix)
	{
		queue.PUT("/task/:taskId", h.createTask)
		queue.GET("/task/:taskId", h.getTask)
	}
	return router
}

// requestLogger logs every request once it is served.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Fake queue request served.",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h *handler) health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *handler) findTask(c *gin.Context) {
	namespace := c.Param("namespace")
	rec, ok := h.store.FindTask(c.Request.Context(), namespace)
	if !ok {
		c.JSON(http.StatusNotFound, errorBody{Code: "ResourceNotFound", Message: "Indexed task not found: " + namespace})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handler) getTask(c *gin.Context) {
	taskID := c.Param("taskId")
	task, ok := h.store.GetTask(c.Request.Context(), taskID)
	if !ok {
		c.JSON(http.StatusNotFound, errorBody{Code: "ResourceNotFound", Message: "Task not found: " + taskID})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) createTask(c *gin.Context) {
	ctx := c.Request.Context()
	taskID := c.Param("taskId")

	var task taskcluster.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "MalformedPayload", Message: err.Error()})
		return
	}
	if task.ProvisionerID == "" || task.WorkerType == "" || task.TaskGroupID == "" {
		c.JSON(http.StatusBadRequest, errorBody{Code: "InputValidationError", Message: "provisionerId, workerType and taskGroupId are required"})
		return
	}

	created, err := h.store.PutTask(ctx, taskID, &task)
	if errors.Is(err, inmemorystore.ErrConflict) {
		c.JSON(http.StatusConflict, errorBody{Code: "RequestConflict", Message: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody{Code: "InternalServerError", Message: err.Error()})
		return
	}

	if created {
		for _, route := range task.Routes {
			if ns, ok := strings.CutPrefix(route, routePrefix); ok {
				h.store.IndexTask(ctx, taskcluster.IndexedTask{Namespace: ns, TaskID: taskID, Expires: task.Expires})
			}
		}
		h.logger.Info("Task queued.", "task_id", taskID, "name", task.Metadata.Name)
	}

	var status taskcluster.TaskStatus
	status.Status.TaskID = taskID
	status.Status.TaskGroupID = task.TaskGroupID
	status.Status.State = "pending"
	c.JSON(http.StatusOK, status)
}
