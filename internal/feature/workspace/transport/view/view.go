// Package view はworkspace画面のHTMLテンプレートを埋め込みで提供します。
package view

import (
	"embed"
	"html/template"
)

// IndexTemplate はメイン画面のテンプレート名です。
const IndexTemplate = "index.html"

//go:embed templates/*.html
var files embed.FS

// Templates はすべての画面テンプレートを解析して返します。
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.html"))
}
