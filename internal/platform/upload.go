package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"vidlift/internal/services"
)

type videoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CategoryID  string   `json:"categoryId,omitempty"`
}

type videoStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type videoResource struct {
	Snippet videoSnippet `json:"snippet"`
	Status  videoStatus  `json:"status"`
}

type insertResponse struct {
	ID string `json:"id"`
}

// Insert uploads the video as a multipart/related request, streaming the
// file and reporting integer percentage changes through req.OnProgress.
// It returns the platform-assigned video id.
func (h *HTTP) Insert(ctx context.Context, req InsertRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", services.Wrap(services.ErrValidation, "uploading", "insert", "title must not be empty", nil)
	}
	if req.AccessToken == "" {
		return "", services.Wrap(services.ErrAuthorization, "uploading", "insert", "missing access token", nil)
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, "uploading", "insert", "open upload file", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, "uploading", "insert", "stat upload file", err)
	}

	resource := videoResource{
		Snippet: videoSnippet{
			Title:       title,
			Description: req.Description,
			Tags:        SplitTags(req.Tags),
			CategoryID:  req.CategoryID,
		},
		Status: videoStatus{PrivacyStatus: req.PrivacyStatus},
	}
	metadata, err := json.Marshal(resource)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, "uploading", "insert", "encode video metadata", err)
	}

	body, contentType := h.multipartBody(metadata, file, info.Size(), req.OnProgress)
	defer body.Close()

	endpoint := fmt.Sprintf("%s/videos?uploadType=multipart&part=snippet,status", h.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, "uploading", "insert", "build upload request", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", services.Wrap(services.ErrTransfer, "uploading", "insert", "upload request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeAPIError("uploading", "insert", resp)
	}

	var decoded insertResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", services.Wrap(services.ErrTransfer, "uploading", "insert", "decode upload response", err)
	}
	if decoded.ID == "" {
		return "", services.Wrap(services.ErrTransfer, "uploading", "insert", "upload response missing video id", nil)
	}
	return decoded.ID, nil
}

// multipartBody assembles a streaming multipart/related body: a JSON
// metadata part followed by the media part read through a progress counter.
func (h *HTTP) multipartBody(metadata []byte, media io.Reader, size int64, onProgress func(int)) (io.ReadCloser, string) {
	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)
	contentType := "multipart/related; boundary=" + writer.Boundary()

	go func() {
		jsonHeader := textproto.MIMEHeader{}
		jsonHeader.Set("Content-Type", "application/json; charset=UTF-8")
		part, err := writer.CreatePart(jsonHeader)
		if err == nil {
			_, err = part.Write(metadata)
		}
		if err == nil {
			mediaHeader := textproto.MIMEHeader{}
			mediaHeader.Set("Content-Type", "video/*")
			part, err = writer.CreatePart(mediaHeader)
		}
		if err == nil {
			buf := make([]byte, h.chunkSize)
			_, err = io.CopyBuffer(part, newProgressReader(media, size, onProgress), buf)
		}
		if err == nil {
			err = writer.Close()
		}
		pipeWriter.CloseWithError(err)
	}()

	return pipeReader, contentType
}

// SetThumbnail uploads a custom thumbnail image for an already published video.
func (h *HTTP) SetThumbnail(ctx context.Context, accessToken, videoID, imagePath string) error {
	if videoID == "" {
		return services.Wrap(services.ErrThumbnail, "attaching_thumbnail", "set", "missing video id", nil)
	}

	file, err := os.Open(imagePath)
	if err != nil {
		return services.Wrap(services.ErrThumbnail, "attaching_thumbnail", "set", "open thumbnail", err)
	}
	defer file.Close()

	endpoint := fmt.Sprintf("%s/thumbnails/set?videoId=%s", h.baseURL, videoID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, file)
	if err != nil {
		return services.Wrap(services.ErrThumbnail, "attaching_thumbnail", "set", "build thumbnail request", err)
	}
	httpReq.Header.Set("Content-Type", imageContentType(imagePath))
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrThumbnail, "attaching_thumbnail", "set", "thumbnail request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError("attaching_thumbnail", "set", resp)
		if errors.Is(apiErr, services.ErrAuthorization) {
			return apiErr
		}
		return services.Wrap(services.ErrThumbnail, "attaching_thumbnail", "set",
			fmt.Sprintf("thumbnail rejected: %s", services.Details(apiErr)), nil)
	}
	return nil
}

func imageContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

type apiErrorBody struct {
	Error json.RawMessage `json:"error"`
}

type apiErrorDetail struct {
	Message string `json:"message"`
	Errors  []struct {
		Reason string `json:"reason"`
	} `json:"errors"`
}

// decodeAPIError classifies a non-2xx platform response. A revoked or
// expired grant maps to the authorization marker so callers can discard the
// stored credential; everything else is a transfer failure.
func decodeAPIError(stage, op string, resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	message := strings.TrimSpace(string(payload))
	var body apiErrorBody
	if err := json.Unmarshal(payload, &body); err == nil && len(body.Error) > 0 {
		var errString string
		if json.Unmarshal(body.Error, &errString) == nil {
			message = errString
		} else {
			var detail apiErrorDetail
			if json.Unmarshal(body.Error, &detail) == nil && detail.Message != "" {
				message = detail.Message
			}
		}
	}
	if message == "" {
		message = resp.Status
	}

	if strings.Contains(strings.ToLower(message), "invalid_grant") {
		return services.Wrap(services.ErrAuthorization, stage, op,
			fmt.Sprintf("credential rejected by platform: %s", message), nil)
	}
	return services.Wrap(services.ErrTransfer, stage, op,
		fmt.Sprintf("platform returned %s: %s", resp.Status, message), nil)
}
