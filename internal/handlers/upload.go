package handlers

import (
	"context"
	"net/http"

	echo "github.com/labstack/echo/v4"

	"github.com/kmolski/filevault/internal/keys"
	"github.com/kmolski/filevault/internal/service"
)

const (
	missingFileMessage      = "Multipart must contain a `file` field"
	unknownAlgorithmMessage = "algorithm must be AES (0) or RSA (1)"
)

type transformFunc func(ctx context.Context, f service.File, alg keys.Algorithm) (*service.UploadData, error)

func (h *Handler) Upload(c echo.Context) error {
	file, err := readFile(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, missingFileMessage)
	}

	data, err := h.svc.Upload(c.Request().Context(), file)
	if err != nil {
		return failure(c, err, file.Name, "Could not create file")
	}

	return successResponse(c, data)
}

func (h *Handler) UploadEncrypted(c echo.Context) error {
	return h.uploadTransformed(c, h.svc.UploadEncrypted)
}

func (h *Handler) UploadDecrypted(c echo.Context) error {
	return h.uploadTransformed(c, h.svc.UploadDecrypted)
}

func (h *Handler) uploadTransformed(c echo.Context, upload transformFunc) error {
	alg, err := algorithm(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, unknownAlgorithmMessage)
	}

	file, err := readFile(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, missingFileMessage)
	}

	data, err := upload(c.Request().Context(), file, alg)
	if err != nil {
		return failure(c, err, file.Name, "Could not create file")
	}

	return successResponse(c, data)
}
