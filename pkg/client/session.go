package client

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"learning-compass-go/internal/model"
	"learning-compass-go/pkg/sse"
)

// ConceptCard 是侧边栏中的一张概念卡片。身份是 Concept（忽略大小写）：
// 重复请求同一概念只会把已有的卡片移到最前，绝不产生第二张。
// 生命周期：pending（IsLoading）→ resolved（字段就位）或 failed（整卡移除）。
type ConceptCard struct {
	ID          string
	Concept     string
	Explanation string
	Relation    string
	IsLoading   bool
}

// FormulaCard 是侧边栏中的一张公式卡片，身份是 CategoryID。
type FormulaCard struct {
	ID         string
	CategoryID string
	Title      string
	Formula    string
	Variables  []model.Variable
}

// Session 是一次会话的客户端状态机：消息列表、分析结果、概念与公式卡片。
// 所有集合只通过 Session 自己的操作变更；方法可以被 UI 回调与流回调
// 交错调用，内部用互斥锁保证去重/重排逻辑不被穿插。
type Session struct {
	client *Client

	mu         sync.Mutex
	messages   []model.ChatMessage
	analysis   *model.QuestionAnalysis
	concepts   []ConceptCard
	formulas   []FormulaCard
	categories []model.FormulaCategory
	inFlight   bool
	lastError  string
}

// NewSession 创建一个空会话。
func NewSession(c *Client) *Session {
	return &Session{client: c}
}

// SendMessage 发送一条用户消息并阻塞到流结束。
// 空白文本或已有发送在途时是空操作。用户消息和空的助手占位消息
// 在任何网络活动之前同步入列；增量到达时逐个追加到占位消息上，
// onDelta（可为 nil）用于 UI 的实时刷新。
//
// 失败时占位消息被撤回；首条消息失败时用户消息一并撤回：
// 失败的第一回合不应留下任何残缺的会话状态。
func (s *Session) SendMessage(ctx context.Context, text string, onDelta func(delta string)) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" || s.inFlight {
		s.mu.Unlock()
		return nil
	}
	first := len(s.messages) == 0
	history := append([]model.ChatMessage(nil), s.messages...)
	s.messages = append(s.messages,
		model.ChatMessage{Role: model.RoleUser, Content: text},
		model.ChatMessage{Role: model.RoleAssistant, Content: ""},
	)
	s.inFlight = true
	s.lastError = ""
	s.mu.Unlock()

	var streamErr string
	cb := sse.Callbacks{
		OnContent: func(delta string) {
			s.appendDelta(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		},
		OnAnalysis: func(analysis model.QuestionAnalysis) {
			s.setAnalysis(analysis)
		},
		OnEnd: func() {
			s.mu.Lock()
			s.inFlight = false
			s.mu.Unlock()
		},
		OnError: func(message string) {
			streamErr = message
			retract := 1
			if first {
				retract = 2
			}
			s.failSend(message, retract)
		},
	}

	if first {
		s.client.SendInitialMessageStream(ctx, text, cb)
	} else {
		s.client.SendMessageStream(ctx, text, history, cb)
	}

	if streamErr != "" {
		return &APIError{Message: streamErr}
	}
	return nil
}

// appendDelta 把一个增量追加到最后一条消息上。发送在途期间最后一条
// 消息始终是助手占位消息，这是 SendMessage 维护的不变式。
func (s *Session) appendDelta(delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return
	}
	last := &s.messages[len(s.messages)-1]
	if last.Role == model.RoleAssistant {
		last.Content += delta
	}
}

func (s *Session) setAnalysis(analysis model.QuestionAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = &analysis
	// 分析结果确定了侧边栏可添加的公式类别
	s.categories = make([]model.FormulaCategory, 0, len(analysis.Formulas))
	for _, f := range analysis.Formulas {
		s.categories = append(s.categories, model.FormulaCategory{ID: slugify(f.Title), Name: f.Title})
	}
}

func (s *Session) failSend(message string, retract int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
	if retract > len(s.messages) {
		retract = len(s.messages)
	}
	s.messages = s.messages[:len(s.messages)-retract]
	s.inFlight = false
}

// AddConceptCard 响应一次概念点击。已有同名卡片（忽略大小写）时只把它
// 移到最前；否则先同步插入一张加载中的乐观卡片，再请求解释与关联，
// 成功则原地补全字段，失败则整卡移除。
func (s *Session) AddConceptCard(ctx context.Context, concept string) error {
	s.mu.Lock()
	for i, card := range s.concepts {
		if strings.EqualFold(card.Concept, concept) {
			s.concepts = moveConceptToFront(s.concepts, i)
			s.mu.Unlock()
			return nil
		}
	}
	loading := ConceptCard{ID: uuid.NewString(), Concept: concept, IsLoading: true}
	s.concepts = append([]ConceptCard{loading}, s.concepts...)
	problemContext := ""
	if s.analysis != nil {
		problemContext = s.analysis.ProblemSummary
	}
	s.mu.Unlock()

	resp, err := s.client.ExplainConcept(ctx, concept, problemContext)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// 获取失败的乐观卡片整卡移除，可见状态不声称不存在的成功
		s.concepts = removeConceptByID(s.concepts, loading.ID)
		return err
	}
	for i := range s.concepts {
		if s.concepts[i].ID == loading.ID {
			s.concepts[i].Explanation = resp.Explanation
			s.concepts[i].Relation = resp.Relation
			s.concepts[i].IsLoading = false
			break
		}
	}
	return nil
}

// ShowFormula 从已取得的分析结果中展示一个公式类别，无需网络调用。
// 已展示的类别再次请求时把卡片移到最前；新展示的类别从可添加列表中移除。
// 分析结果中不存在该类别时返回 false。
func (s *Session) ShowFormula(categoryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reorderFormula(categoryID) {
		return true
	}
	if s.analysis == nil {
		return false
	}
	for _, f := range s.analysis.Formulas {
		if slugify(f.Title) == categoryID {
			s.insertFormulaCard(FormulaCard{
				ID:         uuid.NewString(),
				CategoryID: categoryID,
				Title:      f.Title,
				Formula:    f.Formula,
				Variables:  f.Variables,
			})
			return true
		}
	}
	return false
}

// FetchFormula 是 ShowFormula 的网络版本：类别不在分析结果里时
// 让中继服务生成公式。身份与去重规则相同。
func (s *Session) FetchFormula(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	if s.reorderFormula(categoryID) {
		s.mu.Unlock()
		return nil
	}
	problemContext := ""
	if s.analysis != nil {
		problemContext = s.analysis.ProblemSummary
	}
	s.mu.Unlock()

	resp, err := s.client.GenerateFormula(ctx, categoryID, problemContext)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// 请求期间可能有并发的同类别插入，补查一次再落卡
	if s.reorderFormula(categoryID) {
		return nil
	}
	s.insertFormulaCard(FormulaCard{
		ID:         uuid.NewString(),
		CategoryID: categoryID,
		Title:      resp.Title,
		Formula:    resp.Formula,
		Variables:  resp.Variables,
	})
	return nil
}

// Reset 把会话清回初始空状态，供用户退出会话重新开始时使用。
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.analysis = nil
	s.concepts = nil
	s.formulas = nil
	s.categories = nil
	s.inFlight = false
	s.lastError = ""
}

// ClearError 清除错误槽。
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

// Messages 返回消息列表的副本。
func (s *Session) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChatMessage(nil), s.messages...)
}

// Analysis 返回分析结果的副本，尚未取得时为 nil。
func (s *Session) Analysis() *model.QuestionAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analysis == nil {
		return nil
	}
	analysis := *s.analysis
	return &analysis
}

// ConceptCards 返回概念卡片列表的副本。
func (s *Session) ConceptCards() []ConceptCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ConceptCard(nil), s.concepts...)
}

// FormulaCards 返回公式卡片列表的副本。
func (s *Session) FormulaCards() []FormulaCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FormulaCard(nil), s.formulas...)
}

// AvailableCategories 返回还未展示的公式类别的副本。
func (s *Session) AvailableCategories() []model.FormulaCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FormulaCategory(nil), s.categories...)
}

// LastError 返回错误槽中面向用户的文案，无错误时为空串。
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// InFlight 报告是否有发送在途。
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// reorderFormula 在持锁状态下查找同类别卡片并移到最前。
func (s *Session) reorderFormula(categoryID string) bool {
	for i, card := range s.formulas {
		if card.CategoryID == categoryID {
			moved := append([]FormulaCard{card}, append(s.formulas[:i:i], s.formulas[i+1:]...)...)
			s.formulas = moved
			return true
		}
	}
	return false
}

// insertFormulaCard 在持锁状态下把新卡片插到最前，并下架对应类别。
func (s *Session) insertFormulaCard(card FormulaCard) {
	s.formulas = append([]FormulaCard{card}, s.formulas...)
	kept := s.categories[:0:0]
	for _, cat := range s.categories {
		if cat.ID != card.CategoryID {
			kept = append(kept, cat)
		}
	}
	s.categories = kept
}

func moveConceptToFront(cards []ConceptCard, i int) []ConceptCard {
	card := cards[i]
	return append([]ConceptCard{card}, append(cards[:i:i], cards[i+1:]...)...)
}

func removeConceptByID(cards []ConceptCard, id string) []ConceptCard {
	kept := cards[:0:0]
	for _, card := range cards {
		if card.ID != id {
			kept = append(kept, card)
		}
	}
	return kept
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// slugify 与服务端的类别标识规则一致：小写、空白段折叠为连字符。
func slugify(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}
