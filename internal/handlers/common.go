package handlers

import (
	"errors"
	"io"
	"net/http"

	echo "github.com/labstack/echo/v4"

	"github.com/kmolski/filevault/internal/keys"
	"github.com/kmolski/filevault/internal/service"
	"github.com/kmolski/filevault/internal/storage/types"
)

const defaultMimeType = "application/octet-stream"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts every route on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", Index)
	e.POST("/upload/no-encryption", h.Upload)
	e.POST("/upload/encryption", h.UploadEncrypted)
	e.POST("/upload/decryption", h.UploadDecrypted)
	e.POST("/download", h.Download)
	e.POST("/download/decryption", h.DownloadDecrypted)
}

func Index(c echo.Context) error {
	return c.String(http.StatusOK, "Hello World!")
}

type uploadResponse struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    *service.UploadData `json:"data,omitempty"`
}

func successResponse(c echo.Context, data *service.UploadData) error {
	return c.JSON(http.StatusOK, uploadResponse{Status: true, Message: "File is uploaded", Data: data})
}

func errorResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, uploadResponse{Status: false, Message: message})
}

// failure maps a service error onto a status code. fallback is the message
// used for internal errors.
func failure(c echo.Context, err error, name, fallback string) error {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, "File not found: "+name)
	case errors.Is(err, types.ErrInvalidName):
		return errorResponse(c, http.StatusBadRequest, "invalid file name")
	case errors.Is(err, service.ErrMissingAlgorithm):
		return errorResponse(c, http.StatusBadRequest, "algorithm field is required")
	case errors.Is(err, keys.ErrInvalidCiphertextLength):
		return errorResponse(c, http.StatusBadRequest, "ciphertext length is not a multiple of the block size")
	case errors.Is(err, keys.ErrDecryption):
		return errorResponse(c, http.StatusBadRequest, "could not decrypt file")
	default:
		c.Logger().Error(err)
		return errorResponse(c, http.StatusInternalServerError, fallback)
	}
}

func algorithm(c echo.Context) (keys.Algorithm, error) {
	return keys.ParseAlgorithm(c.FormValue("algorithm"))
}

// readFile extracts the multipart "file" field.
func readFile(c echo.Context) (service.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return service.File{}, err
	}

	src, err := header.Open()
	if err != nil {
		return service.File{}, err
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return service.File{}, err
	}

	mimeType := header.Header.Get(echo.HeaderContentType)
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	return service.File{
		Name:     header.Filename,
		MimeType: mimeType,
		Content:  content,
	}, nil
}
