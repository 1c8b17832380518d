package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/chaos-io/bgstudio/util"
	nhttp "github.com/chaos-io/bgstudio/util/http"
)

const defaultRemoteField = "file"

// RemoteRemBG 把图片以 multipart 上传到外部抠图服务（例如 rembg s 的 /api/remove），
// 响应体是抠好的 PNG，或者一张灰度遮罩
type RemoteRemBG struct {
	endpoint string
	field    string
	timeout  time.Duration
	cli      nhttp.IClient
}

func NewRemoteRemBG(endpoint, field string, timeout time.Duration) *RemoteRemBG {
	if field == "" {
		field = defaultRemoteField
	}
	return &RemoteRemBG{
		endpoint: endpoint,
		field:    field,
		timeout:  timeout,
		cli:      nhttp.NewHTTPClient(),
	}
}

/*
	curl -X POST "$BASE_URL/api/remove" \
	  -F "file=@my_image.png"
*/
func (r *RemoteRemBG) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(r.field, "image.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var resp []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: r.endpoint,
		Method:     http.MethodPost,
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   &resp,
		Timeout:    r.timeout,
	}
	if err := r.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	util.Logger.Debug("get the response", zap.String("endpoint", r.endpoint), zap.Int("bytes", len(resp)))

	out, err := imaging.Decode(bytes.NewReader(resp))
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if mask, ok := out.(*image.Gray); ok {
		return ApplyMask(img, mask), nil
	}
	return util.ToNRGBA(out), nil
}

// Ping 请求服务根路径，能返回 2xx 即认为可用
func (r *RemoteRemBG) Ping(ctx context.Context) error {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	root := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}).String()

	return r.cli.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: root,
		Method:     http.MethodGet,
		Timeout:    r.timeout,
	})
}
