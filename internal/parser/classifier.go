package parser

import (
	"regexp"
	"strings"

	"rais/internal/model"
)

// kindProfile 一种报表类型的识别特征
type kindProfile struct {
	kind             model.ReportKind
	filenamePatterns []*regexp.Regexp
	headerKeywords   []string
}

// 文件名正则取自既有报表的命名习惯（cummulative 为源文件固有拼写）
var kindProfiles = []kindProfile{
	{
		kind: model.KindProductionCumulative,
		filenamePatterns: []*regexp.Regexp{
			regexp.MustCompile(`yearly.*production.*c[ou]mmulative`),
			regexp.MustCompile(`production.*c[ou]mmulative.*\d{4}`),
		},
		headerKeywords: []string{"production", "dispatch", "month"},
	},
	{
		kind: model.KindCumulative,
		filenamePatterns: []*regexp.Regexp{
			regexp.MustCompile(`^c[ou]mmulative.*\d{4}`),
		},
		headerKeywords: []string{"total", "production", "rejection", "month"},
	},
	{
		kind: model.KindAssembly,
		filenamePatterns: []*regexp.Regexp{
			regexp.MustCompile(`assembly.*rejection.*report`),
		},
		headerKeywords: []string{"assembly", "fitment", "alignment", "rejected"},
	},
	{
		kind: model.KindVisual,
		filenamePatterns: []*regexp.Regexp{
			regexp.MustCompile(`visual.*inspection.*report`),
		},
		headerKeywords: []string{"coag", "raised_wire", "surface", "black_mark", "bubble", "pin_hole", "visual"},
	},
	{
		kind: model.KindIntegrity,
		filenamePatterns: []*regexp.Regexp{
			regexp.MustCompile(`balloon.*valve.*integrity`),
			regexp.MustCompile(`integrity.*inspection`),
		},
		headerKeywords: []string{"leakage", "burst", "valve", "integrity"},
	},
	{
		kind: model.KindShopfloor,
		filenamePatterns: []*regexp.Regexp{
			regexp.MustCompile(`shopfloor.*rejection.*report`),
		},
		headerKeywords: []string{"shopfloor", "machine", "operator", "rejected"},
	},
}

const (
	filenameMatchScore = 6 // 文件名命中权重高于单个列名
	classifyThreshold  = 2 // 低于该分视为 unknown
)

// Classification 分类结果
type Classification struct {
	Kind  model.ReportKind `json:"kind"`
	Score int              `json:"score"`
}

// ReportClassifier 报表类型识别器
type ReportClassifier struct{}

// NewReportClassifier 创建识别器
func NewReportClassifier() *ReportClassifier {
	return &ReportClassifier{}
}

// Classify 根据规范化列名和文件名推断报表类型
// unknown 是正常结果，后续走默认字段推断
func (c *ReportClassifier) Classify(filename string, headers []string) Classification {
	nameLower := strings.ToLower(filename)

	best := Classification{Kind: model.KindUnknown}
	for _, profile := range kindProfiles {
		score := 0

		for _, re := range profile.filenamePatterns {
			if re.MatchString(nameLower) {
				score += filenameMatchScore
				break
			}
		}

		for _, kw := range profile.headerKeywords {
			for _, h := range headers {
				if strings.Contains(h, kw) {
					score++
					break
				}
			}
		}

		if score > best.Score {
			best = Classification{Kind: profile.kind, Score: score}
		}
	}

	if best.Score < classifyThreshold {
		return Classification{Kind: model.KindUnknown, Score: best.Score}
	}
	return best
}
