package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	analysis "dental_backend/internal/feature/secondopinion/domain/entity"
)

// Phase は送信フローの状態です。
type Phase string

const (
	// PhaseIdle はファイルまたは相談内容の入力待ちです。
	PhaseIdle Phase = "idle"
	// PhaseLoading は外部呼び出しが1件処理中です。
	PhaseLoading Phase = "loading"
	// PhaseSuccess は解析結果を保持しています。
	PhaseSuccess Phase = "success"
	// PhaseError はエラーメッセージを保持しています。
	PhaseError Phase = "error"
)

// ユーザーに表示するメッセージです。
const (
	MsgFileRequired    = "Please upload a dental scan file."
	MsgConcernRequired = "Please describe your concern."
	FailurePrefix      = "Analysis failed: "
)

// ErrInvalidSnapshot はスナップショットの状態の組み合わせが不正であることを示します。
var ErrInvalidSnapshot = errors.New("invalid workspace snapshot")

// ErrValidation は送信時の入力検証に失敗したことを示します。
var ErrValidation = errors.New("submission validation failed")

// Workspace はブラウザ1つ分の画面状態（選択ファイル・相談内容・送信フロー）です。
// フィールドは非公開で、状態遷移メソッド経由でのみ変更します。
// これにより「処理中かつエラー」のような不正な組み合わせを表現できません。
type Workspace struct {
	id         string
	file       *ScanFile
	concern    string
	phase      Phase
	result     *analysis.AnalysisResult
	errMessage string
	generation uint64
	updatedAt  time.Time
}

// Ticket は処理中の送信1件を識別します。
// 世代が現在の世代と一致しない完了通知は破棄されます。
type Ticket struct {
	Generation uint64
	Request    analysis.AnalysisRequest
}

// NewWorkspace は空のWorkspaceを生成します。
func NewWorkspace(id string) *Workspace {
	return &Workspace{id: id, phase: PhaseIdle, updatedAt: time.Now()}
}

// 各フィールドのアクセサです。
func (w *Workspace) ID() string                       { return w.id }
func (w *Workspace) File() *ScanFile                  { return w.file }
func (w *Workspace) Concern() string                  { return w.concern }
func (w *Workspace) Phase() Phase                     { return w.phase }
func (w *Workspace) Result() *analysis.AnalysisResult { return w.result }
func (w *Workspace) ErrorMessage() string             { return w.errMessage }
func (w *Workspace) Generation() uint64               { return w.generation }
func (w *Workspace) UpdatedAt() time.Time             { return w.updatedAt }
func (w *Workspace) IsLoading() bool                  { return w.phase == PhaseLoading }

// CanSubmit は送信ボタンを有効にできるかを返します。
// 処理中、ファイル未選択、相談内容が空のいずれかであれば無効です。
func (w *Workspace) CanSubmit() bool {
	return !w.IsLoading() && w.file != nil && w.concern != ""
}

// SelectFile はファイルを差し替えます（nilで解除）。
// 直前の結果とエラーを消去し、処理中の送信があれば無効化します。
func (w *Workspace) SelectFile(f *ScanFile) {
	w.file = f
	w.result = nil
	w.errMessage = ""
	if w.phase == PhaseLoading {
		w.generation++
	}
	w.phase = PhaseIdle
	w.touch()
}

// SetConcern は相談内容を更新します。状態は変えません。
func (w *Workspace) SetConcern(concern string) {
	w.concern = concern
	w.touch()
}

// Begin は送信を開始します。
// 入力が不足している場合はエラー状態に遷移し、ErrValidationをラップしたエラーを返します。
// 成功時は処理中に遷移し、以前の結果とエラーを消去してチケットを返します。
func (w *Workspace) Begin() (Ticket, error) {
	if w.file == nil {
		w.fail(MsgFileRequired)
		return Ticket{}, fmt.Errorf("%w: %s", ErrValidation, MsgFileRequired)
	}
	if strings.TrimSpace(w.concern) == "" {
		w.fail(MsgConcernRequired)
		return Ticket{}, fmt.Errorf("%w: %s", ErrValidation, MsgConcernRequired)
	}

	w.generation++
	w.phase = PhaseLoading
	w.result = nil
	w.errMessage = ""
	w.touch()

	return Ticket{
		Generation: w.generation,
		Request: analysis.AnalysisRequest{
			Image:    w.file.Data,
			MIMEType: w.file.MIMEType,
			Concern:  w.concern,
		},
	}, nil
}

// Complete は解析結果を反映します。
// チケットが現在の処理中の送信でなければ何もせずfalseを返します。
func (w *Workspace) Complete(t Ticket, result *analysis.AnalysisResult) bool {
	if !w.current(t) || result == nil {
		return false
	}
	w.phase = PhaseSuccess
	w.result = result.Clone()
	w.touch()
	return true
}

// Fail は失敗メッセージを反映します。メッセージには"Analysis failed: "が付きます。
// チケットが現在の処理中の送信でなければ何もせずfalseを返します。
func (w *Workspace) Fail(t Ticket, message string) bool {
	if !w.current(t) {
		return false
	}
	w.fail(FailurePrefix + message)
	return true
}

func (w *Workspace) current(t Ticket) bool {
	return w.phase == PhaseLoading && t.Generation == w.generation
}

func (w *Workspace) fail(message string) {
	w.phase = PhaseError
	w.result = nil
	w.errMessage = message
	w.touch()
}

func (w *Workspace) touch() {
	w.updatedAt = time.Now()
}

// Snapshot は永続化用のWorkspaceの写しです。
type Snapshot struct {
	ID           string                   `json:"id"`
	File         *ScanFile                `json:"file,omitempty"`
	Concern      string                   `json:"concern"`
	Phase        Phase                    `json:"phase"`
	Result       *analysis.AnalysisResult `json:"result,omitempty"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	Generation   uint64                   `json:"generation"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// Snapshot は現在の状態の写しを返します。
func (w *Workspace) Snapshot() Snapshot {
	return Snapshot{
		ID:           w.id,
		File:         w.file,
		Concern:      w.concern,
		Phase:        w.phase,
		Result:       w.result.Clone(),
		ErrorMessage: w.errMessage,
		Generation:   w.generation,
		UpdatedAt:    w.updatedAt,
	}
}

// Restore はスナップショットからWorkspaceを復元します。
// フェーズと結果・エラーの組み合わせが不正な場合はErrInvalidSnapshotを返します。
func Restore(s Snapshot) (*Workspace, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidSnapshot)
	}
	switch s.Phase {
	case PhaseIdle, PhaseLoading:
		if s.Result != nil || s.ErrorMessage != "" {
			return nil, fmt.Errorf("%w: %s with result or error", ErrInvalidSnapshot, s.Phase)
		}
	case PhaseSuccess:
		if s.Result == nil || s.ErrorMessage != "" {
			return nil, fmt.Errorf("%w: success requires a result only", ErrInvalidSnapshot)
		}
	case PhaseError:
		if s.ErrorMessage == "" || s.Result != nil {
			return nil, fmt.Errorf("%w: error requires a message only", ErrInvalidSnapshot)
		}
	default:
		return nil, fmt.Errorf("%w: unknown phase %q", ErrInvalidSnapshot, s.Phase)
	}
	if s.Phase == PhaseLoading && s.File == nil {
		return nil, fmt.Errorf("%w: loading without a file", ErrInvalidSnapshot)
	}

	return &Workspace{
		id:         s.ID,
		file:       s.File,
		concern:    s.Concern,
		phase:      s.Phase,
		result:     s.Result.Clone(),
		errMessage: s.ErrorMessage,
		generation: s.Generation,
		updatedAt:  s.UpdatedAt,
	}, nil
}
