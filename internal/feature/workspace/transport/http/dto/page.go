// Package dto はworkspace画面の描画用データを定義します。
package dto

import (
	"html/template"
	"strings"
	"time"

	"dental_backend/internal/feature/workspace/domain/entity"
)

// PageView はindex.htmlテンプレートに渡すデータです。
type PageView struct {
	FileName   string
	PreviewURL template.URL // 画像の場合のみ設定
	Concern    string
	Loading    bool
	CanSubmit  bool
	Error      string
	Result     *ResultView
	Year       int
}

// ResultView は解析結果カードの内容です。
type ResultView struct {
	Observation     string
	PotentialIssues []string
	Recommendations []string
	Disclaimer      string
}

// NewPageView はWorkspaceの状態から画面データを組み立てます。
func NewPageView(w *entity.Workspace, now time.Time) PageView {
	v := PageView{
		Concern:   w.Concern(),
		Loading:   w.IsLoading(),
		CanSubmit: w.CanSubmit(),
		Error:     w.ErrorMessage(),
		Year:      now.Year(),
	}

	if f := w.File(); f != nil {
		v.FileName = f.Name
		// DataURLは常に "data:image/..." で始まる
		if strings.HasPrefix(f.MIMEType, "image/") {
			v.PreviewURL = template.URL(f.DataURL())
		}
	}

	if r := w.Result(); r != nil {
		v.Result = &ResultView{
			Observation:     r.Observation,
			PotentialIssues: r.PotentialIssues,
			Recommendations: r.Recommendations,
			Disclaimer:      r.Disclaimer,
		}
	}
	return v
}

// ErrorPage は状態を読み出せなかった場合の画面データです。
func ErrorPage(message string, now time.Time) PageView {
	return PageView{Error: message, Year: now.Year()}
}
