// 离线生成学生成绩单或知识点报告，不依赖数据库和 Redis
//
// 用法:
//
//	go run scripts/score_report.go -file 期中.xlsx -name 张三 -id 1001
//	go run scripts/score_report.go -file 小分.csv -kind knowledge -name 张三 -id 1001 -out 张三.csv
//	go run scripts/score_report.go -file 小分.csv -kind cohort

package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"score_analysis_backend/internal/export"
	"score_analysis_backend/internal/knowledge"
	"score_analysis_backend/internal/scoring"
	"score_analysis_backend/internal/table"

	"gopkg.in/yaml.v3"
)

// reportConfig 只读取 config.yaml 中与分析相关的部分
type reportConfig struct {
	Scoring struct {
		NameColumn      string   `yaml:"name_column"`
		IDColumns       []string `yaml:"id_columns"`
		TotalColumn     string   `yaml:"total_column"`
		ExcludedColumns []string `yaml:"excluded_columns"`
		Policy          string   `yaml:"policy"`
	} `yaml:"scoring"`
	Knowledge struct {
		NameKeywords []string `yaml:"name_keywords"`
		IDKeywords   []string `yaml:"id_keywords"`
		WeakLine     float64  `yaml:"weak_line"`
	} `yaml:"knowledge"`
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件")
	file := flag.String("file", "", "成绩表文件 (csv/xlsx)")
	kind := flag.String("kind", "scores", "scores / knowledge / cohort")
	name := flag.String("name", "", "学生姓名")
	id := flag.String("id", "", "考号或学号")
	policy := flag.String("policy", "", "positive 或 non_negative，默认取配置")
	out := flag.String("out", "", "导出 CSV 路径，为空时以 JSON 打印")
	flag.Parse()

	if *file == "" {
		log.Fatal("请通过 -file 指定成绩表")
	}

	var cfg reportConfig
	if data, err := os.ReadFile(*configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("解析配置文件失败: %v", err)
		}
	} else {
		log.Printf("未读取到配置文件，使用默认选项: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("无法打开成绩表: %v", err)
	}
	defer f.Close()

	grid, err := table.ReadGrid(f, table.DetectFormat(*file))
	if err != nil {
		log.Fatalf("读取成绩表失败: %v", err)
	}

	var result interface{}
	var records export.Records

	switch *kind {
	case "scores":
		opts := scoringOptions(cfg)
		if *policy != "" {
			if opts.Policy, err = scoring.ParsePolicy(*policy); err != nil {
				log.Fatal(err)
			}
		}
		t, err := table.FromGrid(grid)
		if err != nil {
			log.Fatal(err)
		}
		st, err := scoring.NewNormalizer(opts).Normalize(t)
		if err != nil {
			log.Fatalf("规范化失败: %v", err)
		}
		if *name == "" {
			result, records = st.Averages, export.Averages(st)
			break
		}
		report, err := st.Project(*name, *id, opts.Policy)
		if err != nil {
			log.Fatalf("生成成绩单失败: %v", err)
		}
		result, records = report, export.StudentReport(report)

	case "knowledge", "cohort":
		ht, err := table.NewHeaderTable(grid, knowledge.HeaderLevels)
		if err != nil {
			log.Fatal(err)
		}
		sheet := knowledge.NewSheet(ht, knowledgeOptions(cfg))
		if *kind == "cohort" {
			points, err := sheet.CohortRollup()
			if err != nil {
				log.Fatalf("汇总失败: %v", err)
			}
			result, records = points, export.Cohort(points)
			break
		}
		mastery, err := sheet.StudentRollup(*name, *id)
		if err != nil {
			log.Fatalf("汇总失败: %v", err)
		}
		result, records = mastery, export.StudentMastery(mastery)

	default:
		log.Fatalf("未知的 kind: %s", *kind)
	}

	if *out == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatal(err)
		}
		return
	}

	w, err := os.Create(*out)
	if err != nil {
		log.Fatalf("无法创建导出文件: %v", err)
	}
	defer w.Close()
	if err := export.WriteCSV(w, records, true); err != nil {
		log.Fatalf("导出失败: %v", err)
	}
	log.Printf("已导出到 %s", *out)
}

func scoringOptions(cfg reportConfig) scoring.Options {
	opts := scoring.DefaultOptions()
	s := cfg.Scoring
	if s.NameColumn != "" {
		opts.NameColumn = s.NameColumn
	}
	if len(s.IDColumns) > 0 {
		opts.IDColumns = s.IDColumns
	}
	if s.TotalColumn != "" {
		opts.TotalColumn = s.TotalColumn
	}
	if s.ExcludedColumns != nil {
		opts.Excluded = s.ExcludedColumns
	}
	if p, err := scoring.ParsePolicy(s.Policy); err == nil {
		opts.Policy = p
	}
	return opts
}

func knowledgeOptions(cfg reportConfig) knowledge.Options {
	opts := knowledge.DefaultOptions()
	k := cfg.Knowledge
	if len(k.NameKeywords) > 0 {
		opts.NameKeywords = k.NameKeywords
	}
	if len(k.IDKeywords) > 0 {
		opts.IDKeywords = k.IDKeywords
	}
	if k.WeakLine > 0 {
		opts.WeakLine = k.WeakLine
	}
	return opts
}
