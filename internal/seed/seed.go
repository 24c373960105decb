// Package seed holds the baseline catalog inserted on first run.
package seed

import (
	"embed"
	"fmt"
	"strings"

	"github.com/vova4o/goschool-api/internal/models"
)

//go:embed content
var content embed.FS

// Baseline is the set of records a fresh install starts with.
type Baseline struct {
	Tutorials []models.Tutorial
	Examples  []models.Example
}

var tutorials = []models.Tutorial{
	{
		Slug:        "getting-started",
		Title:       "Начало работы с Go",
		Description: "Изучите основы программирования на Go, установку и вашу первую программу.",
		Level:       "Начинающий",
		Duration:    "30 мин",
		Category:    "basics",
		Order:       1,
		IsFree:      true,
	},
	{
		Slug:        "variables-and-types",
		Title:       "Переменные и типы данных",
		Description: "Изучите систему типов Go, переменные, константы и базовые типы данных.",
		Level:       "Начинающий",
		Duration:    "45 мин",
		Category:    "basics",
		Order:       2,
		IsFree:      true,
	},
	{
		Slug:        "goroutines-and-channels",
		Title:       "Горутины и каналы",
		Description: "Конкурентность в Go: горутины, каналы, WaitGroup и select.",
		Level:       "Средний",
		Duration:    "60 мин",
		Category:    "concurrency",
		Order:       1,
		IsFree:      false,
	},
}

var examples = []models.Example{
	{
		Slug:        "hello-world",
		Title:       "Привет, мир",
		Description: "Простая программа Hello World для начала работы с Go.",
		Language:    "go",
		Category:    "Основы",
		Order:       1,
	},
	{
		Slug:        "variables",
		Title:       "Переменные и константы",
		Description: "Работа с различными типами переменных и констант в Go.",
		Language:    "go",
		Category:    "Основы",
		Order:       2,
	},
}

// Load returns fresh copies of the baseline records with bodies attached.
func Load() (Baseline, error) {
	b := Baseline{
		Tutorials: make([]models.Tutorial, 0, len(tutorials)),
		Examples:  make([]models.Example, 0, len(examples)),
	}
	for _, t := range tutorials {
		body, err := read("content/tutorials/" + t.Slug + ".md")
		if err != nil {
			return Baseline{}, err
		}
		t.Content = body
		b.Tutorials = append(b.Tutorials, t)
	}
	for _, e := range examples {
		body, err := read("content/examples/" + e.Slug + ".go.txt")
		if err != nil {
			return Baseline{}, err
		}
		e.Code = body
		b.Examples = append(b.Examples, e)
	}
	return b, nil
}

// MustLoad is Load for process start, where a broken embed is a build defect.
func MustLoad() Baseline {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

func read(path string) (string, error) {
	raw, err := content.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read seed %s: %w", path, err)
	}
	return strings.TrimSpace(string(raw)) + "\n", nil
}
