// Package classifier 从标题与正文的关键词推导文章的内容类型、主题分类与派生元数据。
// 所有读路径（列表、分析、引用、状态）都调用这里，保证同一篇文章在任何接口得到相同结果。
package classifier

import (
	"sort"
	"strings"

	"github.com/LJTian/BlogHub/internal/processor"
)

// ContentType 文章的体裁
type ContentType string

const (
	HowTo           ContentType = "HowTo"
	ValidationGuide ContentType = "ValidationGuide"
	FraudDetection  ContentType = "FraudDetection"
	DocumentGuide   ContentType = "DocumentGuide"
	Article         ContentType = "Article"
)

const (
	// MaxCategories 每篇文章最多保留的分类数
	MaxCategories = 5

	titleWeight = 3
	bodyWeight  = 1
)

// typeRule 按顺序匹配，先命中者胜
type typeRule struct {
	Type         ContentType
	TitleTerms   []string
	ContentTerms []string
}

var typeRules = []typeRule{
	{HowTo, []string{"paso", "cómo"}, []string{"paso 1", "paso 2"}},
	{ValidationGuide, []string{"validar", "detectar", "verificar"}, nil},
	{FraudDetection, []string{"fraude", "falso", "apócrifo"}, nil},
	{DocumentGuide, []string{"repuve", "amda", "tarjeta"}, nil},
}

// Category 分类标签与关键词；表的顺序即同分时的排序依据
type Category struct {
	Label    string
	Keywords []string
}

var categoryTable = []Category{
	{"REPUVE", []string{"repuve", "registro público vehicular", "calcomanía mx", "sello", "chip"}},
	{"AMDA", []string{"amda", "factura amda", "papel seguridad", "cfdi"}},
	{"Tarjetas de Circulación", []string{"tarjeta de circulación", "tarjeta circulación", "documento vehicular"}},
	{"Fraude Automotriz", []string{"fraude", "falso", "apócrifo", "falsificación", "estafa"}},
	{"Validación Vehicular", []string{"validar", "verificar", "detectar", "inspección"}},
	{"Prevención de Fraudes", []string{"prevención", "evitar", "protección", "seguridad"}},
	{"Servicios Automotrices", []string{"servicio", "inspección", "consultoría", "dictamen"}},
	{"Documentos Oficiales", []string{"documento", "oficial", "gobierno", "autoridad"}},
	{"SAT", []string{"sat", "factura electrónica", "cfdi", "fiscal"}},
	{"Industria Automotriz", []string{"automotriz", "vehículo", "auto", "carro"}},
	{"México", []string{"méxico", "mexicano", "nacional", "gobierno"}},
	{"Seguridad Vehicular", []string{"seguridad", "robo", "hurto", "protección"}},
	{"Tecnología Automotriz", []string{"tecnología", "digital", "electrónico", "sistema"}},
	{"Legislación", []string{"ley", "norma", "regulación", "legal"}},
	{"General", []string{"general", "información", "consejo", "guía"}},
}

// Categories 返回分类表的拷贝
func Categories() []Category {
	out := make([]Category, len(categoryTable))
	copy(out, categoryTable)
	return out
}

// text 统一小写后的标题与正文
type text struct {
	title string
	body  string
}

func lowered(p processor.Post) text {
	return text{title: strings.ToLower(p.Title), body: strings.ToLower(p.FullContent)}
}

// ClassifyType 判定内容类型
func ClassifyType(p processor.Post) ContentType {
	return classifyType(lowered(p))
}

func classifyType(t text) ContentType {
	for _, r := range typeRules {
		if containsAny(t.title, r.TitleTerms) || containsAny(t.body, r.ContentTerms) {
			return r.Type
		}
	}
	return Article
}

// Categorize 标题命中一个关键词 +3，正文命中 +1（按关键词计，不按出现次数）；
// 按得分降序稳定排序，取前 MaxCategories 个后去掉 0 分
func Categorize(p processor.Post) []string {
	return categorize(lowered(p))
}

func categorize(t text) []string {
	type scored struct {
		label string
		score int
	}
	scores := make([]scored, len(categoryTable))
	for i, c := range categoryTable {
		s := 0
		for _, kw := range c.Keywords {
			if strings.Contains(t.title, kw) {
				s += titleWeight
			}
			if strings.Contains(t.body, kw) {
				s += bodyWeight
			}
		}
		scores[i] = scored{c.Label, s}
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	if len(scores) > MaxCategories {
		scores = scores[:MaxCategories]
	}
	out := make([]string, 0, len(scores))
	for _, s := range scores {
		if s.score > 0 {
			out = append(out, s.label)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
