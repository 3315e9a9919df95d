package postdesk

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/eringen/postdesk/content"
)

const jpegQuality = 85

// imageTypes maps the accepted upload types to their file extension.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// errInvalidImage marks uploads rejected for their content rather than
// for a server failure.
type errInvalidImage struct{ msg string }

func (e errInvalidImage) Error() string { return e.msg }

// processImage validates data as an image of type mimeType. JPEG and PNG
// images wider than maxWidth are downscaled and re-encoded in their own
// format; everything else is returned unchanged.
func processImage(data []byte, mimeType string, maxWidth int) ([]byte, error) {
	switch mimeType {
	case "image/gif":
		if _, err := gif.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, errInvalidImage{"decode gif: " + err.Error()}
		}
		return data, nil
	case "image/webp":
		if _, err := webp.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, errInvalidImage{"decode webp: " + err.Error()}
		}
		return data, nil
	}

	var (
		img image.Image
		err error
	)
	if mimeType == "image/png" {
		img, err = png.Decode(bytes.NewReader(data))
	} else {
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errInvalidImage{"decode image: " + err.Error()}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxWidth {
		return data, nil
	}

	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if mimeType == "image/png" {
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// uploadFilename returns img-<unix ms>-<6 random hex chars><ext>.
func uploadFilename(now time.Time, ext string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("img-%d-%s%s", now.UnixMilli(), random, ext)
}

func (a *App) handleUploadImage(c echo.Context) error {
	limit := a.Config.MaxUploadSize
	// Leave room for the multipart framing and the slug field.
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, limit+1<<20)
	tooLarge := fmt.Sprintf("File too large (max %d MB)", limit>>20)
	if err := c.Request().ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apiError(c, http.StatusBadRequest, tooLarge)
		}
		return apiError(c, http.StatusBadRequest, "Invalid multipart form")
	}

	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		return apiError(c, http.StatusBadRequest, "Missing required field: slug")
	}
	if !content.ValidSlug(slug) {
		return apiError(c, http.StatusBadRequest, "Invalid slug format")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return apiError(c, http.StatusBadRequest, "No image file provided")
	}
	if file.Size > limit {
		return apiError(c, http.StatusBadRequest, tooLarge)
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(file.Header.Get(echo.HeaderContentType), ";")[0]))
	ext, ok := imageTypes[declared]
	if !ok {
		return apiError(c, http.StatusBadRequest, "Unsupported image type. Allowed: image/jpeg, image/png, image/gif, image/webp")
	}

	src, err := file.Open()
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
	}
	if int64(len(data)) > limit {
		return apiError(c, http.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", limit>>20))
	}
	if sniffed := http.DetectContentType(data); sniffed != declared {
		return apiError(c, http.StatusBadRequest, "File content does not match its declared type")
	}

	out, err := processImage(data, declared, a.Config.MaxImageWidth)
	if err != nil {
		if _, invalid := err.(errInvalidImage); invalid {
			return apiError(c, http.StatusBadRequest, "Invalid image: "+err.Error())
		}
		return apiError(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
	}

	dir := filepath.Join(a.Config.PublicDir, "posts", slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apiError(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
	}
	filename := uploadFilename(time.Now(), ext)
	f, err := os.OpenFile(filepath.Join(dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
	}
	if _, err := f.Write(out); err != nil {
		f.Close()
		return apiError(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
	}
	if err := f.Close(); err != nil {
		return apiError(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
	}

	c.Logger().Infof("uploaded %s for %s (%d bytes)", filename, slug, len(out))
	return apiOK(c, http.StatusOK, echo.Map{
		"url":      "/posts/" + slug + "/" + filename,
		"filename": filename,
	})
}
