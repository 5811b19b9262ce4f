// Package main 是一个基于 pkg/client 的终端聊天客户端，
// 用于本地验证中继服务的流式行为与侧边栏状态机。
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"learning-compass-go/pkg/client"
)

func main() {
	baseURL := flag.String("server", defaultBaseURL(), "中继服务地址")
	flag.Parse()

	c := client.New(*baseURL)
	session := client.NewSession(c)
	ctx := context.Background()

	if _, err := c.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "无法连接中继服务 %s: %v\n", *baseURL, err)
		os.Exit(1)
	}

	fmt.Println("Learning Compass 终端客户端")
	fmt.Println("命令: /concept <术语>  /formula <类别>  /cards  /reset  /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/reset":
			session.Reset()
			fmt.Println("会话已重置")
		case line == "/cards":
			printCards(session)
		case strings.HasPrefix(line, "/concept "):
			concept := strings.TrimSpace(strings.TrimPrefix(line, "/concept "))
			if err := session.AddConceptCard(ctx, concept); err != nil {
				fmt.Printf("概念解释失败: %v\n", err)
				continue
			}
			printCards(session)
		case strings.HasPrefix(line, "/formula "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/formula "))
			if !session.ShowFormula(id) {
				if err := session.FetchFormula(ctx, id); err != nil {
					fmt.Printf("公式生成失败: %v\n", err)
					continue
				}
			}
			printCards(session)
		default:
			send(ctx, session, line)
		}
	}
}

func send(ctx context.Context, session *client.Session, text string) {
	first := len(session.Messages()) == 0
	fmt.Print("tutor: ")
	err := session.SendMessage(ctx, text, func(delta string) {
		fmt.Print(renderHighlights(delta))
	})
	fmt.Println()
	if err != nil {
		fmt.Printf("发送失败: %s\n", session.LastError())
		return
	}
	if first {
		printAnalysis(session)
	}
}

func printAnalysis(session *client.Session) {
	analysis := session.Analysis()
	if analysis == nil {
		return
	}
	fmt.Printf("--- %s ---\n", analysis.Title)
	fmt.Printf("情景: %s\n", analysis.ProblemSummary)
	if analysis.Goal != nil {
		fmt.Printf("目标: %s\n", *analysis.Goal)
	}
	for _, q := range analysis.Quantities {
		fmt.Printf("已知: %s\n", q)
	}
	if categories := session.AvailableCategories(); len(categories) > 0 {
		fmt.Println("可添加的公式类别:")
		for _, cat := range categories {
			fmt.Printf("  %s (%s)\n", cat.Name, cat.ID)
		}
	}
}

func printCards(session *client.Session) {
	for _, card := range session.ConceptCards() {
		if card.IsLoading {
			fmt.Printf("[概念] %s (加载中)\n", card.Concept)
			continue
		}
		fmt.Printf("[概念] %s: %s\n       %s\n", card.Concept, renderHighlights(card.Explanation), card.Relation)
	}
	for _, card := range session.FormulaCards() {
		fmt.Printf("[公式] %s: %s\n", card.Title, card.Formula)
		for _, v := range card.Variables {
			fmt.Printf("       %s: %s, %s\n", v.Symbol, v.Name, v.Description)
		}
	}
}

// renderHighlights 把 @[term] 标记渲染为带括号的可读形式。
func renderHighlights(text string) string {
	var b strings.Builder
	for _, seg := range client.ParseHighlights(text) {
		if seg.Highlighted {
			b.WriteString("[" + seg.Text + "]")
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func defaultBaseURL() string {
	if v := os.Getenv("LC_CLIENT_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:3001"
}
