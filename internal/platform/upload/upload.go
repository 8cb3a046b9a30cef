// Package upload はマルチパートでアップロードされたファイルの読み込みとMIMEタイプの判定を提供します。
package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DICOMMIMEType はDICOMファイルのMIMEタイプです。
const DICOMMIMEType = "application/dicom"

// ErrNoFile はフォームにファイルが含まれていないことを示します。
var ErrNoFile = errors.New("no file uploaded")

// File はアップロードされたファイルの内容です。
type File struct {
	Name     string // クライアントが送信したファイル名
	MIMEType string // 判定済みのMIMEタイプ
	Data     []byte // ファイル本体
}

// Read はマルチパートのファイルヘッダーを開いて全体を読み込みます。
// fhがnilまたは空ファイルの場合はErrNoFileを返します。
func Read(fh *multipart.FileHeader) (*File, error) {
	if fh == nil {
		return nil, ErrNoFile
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("アップロードファイルのクローズに失敗", "error", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	name := filepath.Base(fh.Filename)
	return &File{
		Name:     name,
		MIMEType: ResolveMIMEType(name, fh.Header.Get("Content-Type"), data),
		Data:     data,
	}, nil
}

// ResolveMIMEType はファイルのMIMEタイプを決定します。
//
// 優先順位:
//   - 拡張子が.dcmの場合はapplication/dicom
//   - 解析可能なContent-Type（application/octet-stream以外）はパラメータを除いてそのまま使用
//   - それ以外はファイル内容から判定
func ResolveMIMEType(name, header string, data []byte) string {
	if strings.EqualFold(filepath.Ext(name), ".dcm") {
		return DICOMMIMEType
	}
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(mimetype.Detect(data).String())
	return mt
}
