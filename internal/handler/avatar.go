package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/service"
)

// multipartSlack covers boundaries and part headers on top of the image.
const multipartSlack = 64 << 10

// AvatarHandler serves /user/me/avatar and /user/{id}/avatar.
type AvatarHandler struct {
	avatars *service.AvatarService
	logger  *slog.Logger
}

func NewAvatarHandler(avatars *service.AvatarService, logger *slog.Logger) *AvatarHandler {
	return &AvatarHandler{avatars: avatars, logger: logger}
}

// HandleUpload stores the multipart field "image" and echoes the
// normalized PNG.
//
// HTTP: POST /user/me/avatar
//
// The part is streamed, never buffered past the size limit: reading stops
// at limit+1 bytes and the service rejects anything that long.
func (h *AvatarHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	id, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	limit := h.avatars.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)

	mr, err := r.MultipartReader()
	if err != nil {
		WriteError(w, r, &badRequest{msg: "expected a multipart/form-data body"})
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			WriteError(w, r, apperror.ValidationFailed("image", "is required"))
			return
		}
		if err != nil {
			WriteError(w, r, uploadError(err, limit))
			return
		}
		if part.FormName() != "image" {
			part.Close()
			continue
		}

		raw, err := io.ReadAll(io.LimitReader(part, limit+1))
		part.Close()
		if err != nil {
			WriteError(w, r, uploadError(err, limit))
			return
		}

		stored, err := h.avatars.Set(r.Context(), id, raw)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		writePNG(w, http.StatusCreated, stored)
		return
	}
}

func uploadError(err error, limit int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.LargeFile(limit)
	}
	return &badRequest{msg: "malformed multipart body: " + err.Error()}
}

// HTTP: GET /user/me/avatar
func (h *AvatarHandler) HandleGetMine(w http.ResponseWriter, r *http.Request) {
	id, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.writeAvatar(w, r, id.String(), func() ([]byte, error) {
		return h.avatars.GetByOwner(r.Context(), id)
	})
}

// HTTP: GET /user/{id}/avatar
func (h *AvatarHandler) HandleGetByAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.writeAvatar(w, r, id.String(), func() ([]byte, error) {
		return h.avatars.GetByOwner(r.Context(), id)
	})
}

func (h *AvatarHandler) writeAvatar(w http.ResponseWriter, r *http.Request, owner string, get func() ([]byte, error)) {
	data, err := get()
	if err != nil {
		WriteError(w, r, err)
		return
	}
	h.logger.Debug("serving avatar", slog.String("owner", owner), slog.Int("bytes", len(data)))
	writePNG(w, http.StatusOK, data)
}

// HTTP: DELETE /user/me/avatar
func (h *AvatarHandler) HandleDeleteMine(w http.ResponseWriter, r *http.Request) {
	id, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.avatars.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
