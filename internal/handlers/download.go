package handlers

import (
	"mime"
	"net/http"
	"path"

	echo "github.com/labstack/echo/v4"
)

func (h *Handler) Download(c echo.Context) error {
	name := c.FormValue("fileName")
	if name == "" {
		return errorResponse(c, http.StatusBadRequest, "missing fileName")
	}

	rc, err := h.svc.Open(c.Request().Context(), name)
	if err != nil {
		return failure(c, err, name, "Could not open file")
	}
	defer rc.Close()

	setAttachment(c, name)
	return c.Stream(http.StatusOK, defaultMimeType, rc)
}

func (h *Handler) DownloadDecrypted(c echo.Context) error {
	name := c.FormValue("fileName")
	if name == "" {
		return errorResponse(c, http.StatusBadRequest, "missing fileName")
	}

	alg, err := algorithm(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, unknownAlgorithmMessage)
	}

	data, err := h.svc.OpenDecrypted(c.Request().Context(), name, alg)
	if err != nil {
		return failure(c, err, name, "Could not open file")
	}

	setAttachment(c, name)
	return c.Blob(http.StatusOK, defaultMimeType, data)
}

func setAttachment(c echo.Context, name string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(name)})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
}
