// Package media 将报告附件保存到本地磁盘，并返回对外访问的 URL。
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Kind 附件类别
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrTooLarge         = errors.New("file exceeds the maximum upload size")
	ErrEmptyFile        = errors.New("file is empty")
	ErrForeignURL       = errors.New("url does not belong to this store")
)

// 手机录音常用的容器格式
var audioContainers = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
	"video/3gpp": true,
}

// LocalStore 将文件写入 Dir，并以 PublicBaseURL 为前缀对外提供
type LocalStore struct {
	Dir           string
	PublicBaseURL string
	MaxBytes      int64
}

// NewLocalStore 创建本地存储，目录不存在时自动创建
func NewLocalStore(dir, publicBaseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalStore{
		Dir:           dir,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		MaxBytes:      maxBytes,
	}, nil
}

// Accepts 判断检测到的 MIME 类型是否属于 kind
func Accepts(kind Kind, mime string) bool {
	switch kind {
	case KindImage:
		return strings.HasPrefix(mime, "image/")
	case KindAudio:
		return strings.HasPrefix(mime, "audio/") || audioContainers[mime]
	}
	return false
}

// Save 根据内容识别文件类型，类型与 kind 不符时拒绝；
// 通过后以随机文件名写入磁盘并返回公开 URL。
func (s *LocalStore) Save(r io.Reader, kind Kind) (string, error) {
	limit := s.MaxBytes
	if limit <= 0 {
		limit = 25 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	mime := strings.SplitN(mtype.String(), ";", 2)[0]
	if !Accepts(kind, mime) {
		return "", fmt.Errorf("%w: %s is not %s", ErrUnsupportedMedia, mime, kind)
	}

	name := uuid.NewString() + mtype.Extension()
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return s.PublicBaseURL + "/" + name, nil
}

// Delete 删除 Save 返回的 URL 对应的文件；文件已不存在时不报错
func (s *LocalStore) Delete(url string) error {
	name, ok := strings.CutPrefix(url, s.PublicBaseURL+"/")
	if !ok || name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}
