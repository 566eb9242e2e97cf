package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"study-buddy/internal/agent/session"
	"study-buddy/internal/app"
	"study-buddy/pkg/config"
)

func main() {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	bootstrap, err := app.NewBootstrap(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer bootstrap.Close()

	sess := session.New("")
	sess.ShowThinking = cfg.Agent.ShowThinking

	fmt.Println("Study Buddy ready. Type a question, or :help for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if done := runCommand(ctx, bootstrap, sess, line); done {
				break
			}
			continue
		}
		chat(ctx, bootstrap, sess, line)
	}

	fmt.Println()
	fmt.Println(sess.Summary())
}

// runCommand 处理 ':' 前缀命令，返回 true 时退出 REPL
func runCommand(ctx context.Context, bootstrap *app.Bootstrap, sess *session.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Println("  :upload <path>  - 导入学习材料（PDF 或文本）")
		fmt.Println("  :summary        - 会话统计")
		fmt.Println("  :thinking       - 切换执行轨迹展示")
		fmt.Println("  :quit           - 退出")
	case ":upload":
		if len(fields) < 2 {
			fmt.Println("Usage: :upload <path>")
			return false
		}
		upload(ctx, bootstrap, sess, strings.Join(fields[1:], " "))
	case ":summary":
		fmt.Println(sess.Summary())
	case ":thinking":
		sess.ShowThinking = !sess.ShowThinking
		fmt.Printf("show thinking: %v\n", sess.ShowThinking)
	default:
		fmt.Printf("unknown command %s, try :help\n", fields[0])
	}
	return false
}

func upload(ctx context.Context, bootstrap *app.Bootstrap, sess *session.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取文件失败: %v\n", err)
		return
	}
	name := filepath.Base(path)

	var result *app.IngestResult
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		result, err = bootstrap.Documents.IngestPDF(ctx, name, data)
	} else {
		result, err = bootstrap.Documents.IngestText(ctx, name, string(data))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "导入失败: %v\n", err)
		return
	}
	sess.SetDocument(name)
	fmt.Printf("Loaded %s: %d sections indexed.\n", name, result.Chunks)
}

func chat(ctx context.Context, bootstrap *app.Bootstrap, sess *session.Context, message string) {
	recent := bootstrap.Dispatcher.Recent(sess.ID, 10)
	plan := bootstrap.Planner.Plan(message, recent, sess.DocActive)

	result, err := bootstrap.Dispatcher.Run(ctx, sess, plan, message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "请求失败: %v\n", err)
		return
	}

	if len(result.Thinking) > 0 {
		for _, line := range result.Thinking {
			fmt.Printf("  [%s]\n", line)
		}
	}
	fmt.Println(result.Answer)
	if result.Suggestion != "" {
		fmt.Println()
		fmt.Println(result.Suggestion)
	}
}
