package httpapi

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"staffregister/internal/register"
)

// Submitter runs the submission write path.
type Submitter interface {
	Submit(ctx context.Context, sub register.Submission) (register.Record, error)
}

// Reader fetches the stored rows for display.
type Reader interface {
	Snapshot(ctx context.Context) register.Snapshot
}

type Handler struct {
	submit Submitter
	read   Reader
}

func NewHandler(s Submitter, r Reader) *Handler {
	return &Handler{submit: s, read: r}
}

// Form renders the registration form.
func (h *Handler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"OtherTitle": register.OtherTitle})
}

// SubmitForm always answers 200; the outcome is carried in the body.
func (h *Handler) SubmitForm(c *gin.Context) {
	var sub register.Submission
	if err := c.ShouldBind(&sub); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": register.StatusError, "message": err.Error()})
		return
	}
	if sub.Identifier == "" {
		sub.Identifier = c.PostForm("identifier")
	}

	_, err := h.submit.Submit(c.Request.Context(), sub)
	status, msg := register.Outcome(err)
	switch status {
	case register.StatusError:
		log.Printf("submission failed: %v", err)
	case register.StatusDuplicate:
		log.Printf("duplicate submission rejected: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "message": msg})
}

// Admin renders every stored row.
func (h *Handler) Admin(c *gin.Context) {
	snap := h.read.Snapshot(c.Request.Context())
	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Header": snap.Header,
		"Rows":   snap.Rows,
		"Count":  len(snap.Rows),
	})
}

// Records returns the stored rows keyed by header.
func (h *Handler) Records(c *gin.Context) {
	snap := h.read.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"header": snap.Header, "records": snap.Records()})
}
