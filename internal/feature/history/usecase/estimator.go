package usecase

import (
	"math"
	"time"

	"stockimate/internal/feature/history/domain/entity"
	quoteentity "stockimate/internal/feature/quotes/domain/entity"
)

const (
	maxEstimatedPoints = 365
	minEstimatedPrice  = 0.01
	estimateNoise      = 0.02
)

// EstimateSeries は現在価格で終わる推定系列を生成します。
// すべての取得元が失敗した場合にチャートを描くためのもので、実際の過去価格ではありません。
//
// 始値は現在価格の50〜100%の乱数で、N = min(days, 365)点かけて1点ごとに±2%のノイズを
// 加えながら現在価格へ線形に近づき、最後に現在価格の点を加えます。結果はN+1点です。
//
// 最後の点のタイムスタンプは原則クォートの時刻ですが、クォートが推定系列の末尾より
// 古い場合(市場の休場中など)は昇順を保つためnowを使います。クォートの時刻と常に一致させる
// 規則からの意図的な逸脱です。
func EstimateSeries(q quoteentity.Quote, days int, now time.Time, rnd func() float64) entity.Series {
	if days < 1 {
		days = 1
	}
	n := min(days, maxEstimatedPoints)
	nowMs := now.UnixMilli()
	intervalMs := float64(days) * float64(24*time.Hour/time.Millisecond) / float64(n)

	value := q.Price * (0.5 + rnd()*0.5)
	step := (q.Price - value) / float64(n)

	series := make(entity.Series, 0, n+1)
	for i := 0; i < n; i++ {
		ts := nowMs - int64(math.Round(float64(n-i)*intervalMs))
		noise := value * (rnd()*2*estimateNoise - estimateNoise)
		value += step + noise
		series = append(series, entity.ChartPoint{TimestampMs: ts, Value: math.Max(value, minEstimatedPrice)})
	}

	// 最後の点は現在価格。末尾より古い時刻ならnowに置く
	last := q.TimestampMs
	if last <= series[n-1].TimestampMs {
		last = nowMs
	}
	return append(series, entity.ChartPoint{TimestampMs: last, Value: q.Price})
}
