package integrations

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"timebank/internal/observability"

	"github.com/chai2010/webp"
	"github.com/valyala/fasthttp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// Host stores an uploaded image and returns a durable URL for it.
type Host interface {
	Name() string
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// ErrInvalidImage is returned for payloads that are not a supported image.
var ErrInvalidImage = errors.New("invalid image")

const (
	DefaultImgBBEndpoint = "https://api.imgbb.com/1/upload"
	imgbbTimeout         = 30 * time.Second
)

// ImgBB uploads to the imgbb.com API.
type ImgBB struct {
	APIKey   string
	Endpoint string
	Client   *fasthttp.Client
}

// NewImgBB returns an ImgBB host. An empty endpoint selects the public API.
func NewImgBB(apiKey, endpoint string) *ImgBB {
	if endpoint == "" {
		endpoint = DefaultImgBBEndpoint
	}
	return &ImgBB{
		APIKey:   apiKey,
		Endpoint: endpoint,
		Client: &fasthttp.Client{
			Name:         "timebank-media",
			ReadTimeout:  imgbbTimeout,
			WriteTimeout: imgbbTimeout,
		},
	}
}

func (h *ImgBB) Name() string { return "imgbb" }

type imgbbResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (h *ImgBB) Upload(ctx context.Context, filename string, data []byte) (url string, err error) {
	defer func() {
		observability.MediaUploadsTotal.WithLabelValues(h.Name(), observability.Result(err)).Inc()
	}()
	if len(data) == 0 {
		return "", ErrInvalidImage
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("key", h.APIKey); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(mw.FormDataContentType())
	req.SetBody(body.Bytes())

	timeout := imgbbTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := h.Client.DoTimeout(req, resp, timeout); err != nil {
		return "", fmt.Errorf("imgbb request: %w", err)
	}

	var out imgbbResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("imgbb response (status %d): %w", resp.StatusCode(), err)
	}
	if !out.Success || out.Data.URL == "" {
		msg := out.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return "", fmt.Errorf("imgbb upload failed: %s", msg)
	}
	return out.Data.URL, nil
}

const (
	localMaxSize = 2048
	webpQuality  = 70
)

// LocalHost re-encodes uploads to WebP on disk and serves them under BaseURL.
type LocalHost struct {
	Dir     string
	BaseURL string
}

// NewLocalHost returns a LocalHost writing into dir.
func NewLocalHost(dir, baseURL string) *LocalHost {
	if baseURL == "" {
		baseURL = "/media"
	}
	return &LocalHost{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (h *LocalHost) Name() string { return "local" }

func (h *LocalHost) Upload(_ context.Context, _ string, data []byte) (url string, err error) {
	defer func() {
		observability.MediaUploadsTotal.WithLabelValues(h.Name(), observability.Result(err)).Inc()
	}()
	if !isAllowedImageMIME(http.DetectContentType(data)) {
		return "", ErrInvalidImage
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrInvalidImage
	}

	buf := &bytes.Buffer{}
	if err := webp.Encode(buf, resizeToFit(decoded, localMaxSize, localMaxSize), &webp.Options{Quality: webpQuality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	name := hex.EncodeToString(sum[:]) + ".webp"
	if err := os.MkdirAll(h.Dir, 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(h.Dir, name), buf.Bytes(), 0o600); err != nil {
		return "", err
	}
	return h.BaseURL + "/" + name, nil
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW, newH := max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
