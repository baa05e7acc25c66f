package ingest

import (
	"time"

	"github.com/LJTian/BlogHub/internal/processor"
)

// FallbackLink 兜底文章的链接，feed 同步失败后 Store 中只剩这一条
const FallbackLink = "https://nexcar.substack.com/p/como-validar-una-factura-amda-y-detectar"

const fallbackContent = `<h2>Cómo identificar una factura AMDA falsa</h2>` +
	`<p><strong>Seguro que tu factura AMDA es original?</strong> A simple vista todas parecen reales, pero hay detalles que delatan a las falsas.</p>` +
	`<p>Las facturas falsas son un problema creciente que puede traerte serios problemas con el SAT. Por eso es crucial que sepas identificarlas antes de que sea demasiado tarde.</p>`

// FallbackPost 固定内容的兜底文章，createdAt 取 now
func FallbackPost(now time.Time) processor.Post {
	return processor.Post{
		ID:          "fallback-1",
		Title:       "Cómo validar una factura AMDA es original - A simple vista todas parecen reales, pero hay detalles que delatan a las falsas",
		Link:        FallbackLink,
		FullContent: fallbackContent,
		Excerpt:     "Seguro que tu factura AMDA es original? A simple vista todas parecen reales, pero hay detalles que delatan a las falsas. En esta guía te cuento cómo detectarlas.",
		PubDate:     "Wed, 20 Aug 2025 15:15:37 GMT",
		Author:      processor.DefaultAuthor,
		CreatedAt:   now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}
