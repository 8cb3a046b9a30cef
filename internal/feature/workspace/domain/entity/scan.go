// Package entity はworkspaceフィーチャーのドメインモデルを定義します。
package entity

import "encoding/base64"

// ScanFile は利用者が選択した歯科スキャンファイルです。
type ScanFile struct {
	Name     string // 表示用のファイル名
	MIMEType string // MIMEタイプ
	Data     []byte // ファイル本体
}

// DataURL はプレビュー表示用のdata URLを返します。
func (f *ScanFile) DataURL() string {
	if f == nil || len(f.Data) == 0 {
		return ""
	}
	mt := f.MIMEType
	if mt == "" {
		mt = "application/octet-stream"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}
