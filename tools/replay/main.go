package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/server/handlers/notification"
	"oip/dpnotify/internal/server/handlers/webhook"
	"oip/dpnotify/internal/server/routers"
	"oip/dpnotify/pkg/config"
	"oip/dpnotify/pkg/ginx"
	"oip/dpnotify/pkg/infra/redis"
	"oip/dpnotify/pkg/logger"
)

var (
	configPath   = flag.String("config", "", "配置文件路径")
	testcasePath = flag.String("testcase", "./tools/replay/testcase/webhooks.json", "推送序列文件路径")
	useRedis     = flag.Bool("use-redis", false, "使用配置中的 Redis 保存去重状态（默认内存）")
)

// TestCase 一次推送及期望的返回文案
type TestCase struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
	Expect  string          `json:"expect"`
}

// printDispatcher 只打印通知，不入队
type printDispatcher struct{}

func (printDispatcher) Dispatch(_ context.Context, n *alert.Notification) error {
	fmt.Printf("  📧 To: %s\n", strings.Join(n.To, ", "))
	fmt.Printf("  📧 Subject: %s\n", n.Subject)
	for _, line := range strings.Split(n.Text, "\n") {
		fmt.Printf("     %s\n", line)
	}
	return nil
}

func main() {
	flag.Parse()
	gin.SetMode(gin.ReleaseMode)

	fmt.Println("========================================")
	fmt.Println("  Replay - dpnotify 推送回放工具")
	fmt.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 加载推送序列
	testCases, err := loadTestCases(*testcasePath)
	if err != nil {
		fmt.Printf("❌ Failed to load test cases: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded %d deliveries from %s\n", len(testCases), *testcasePath)

	// 3. 初始化去重状态
	ctx := context.Background()
	var (
		cache    alert.FieldCache
		notified alert.NotifiedSet
	)
	if *useRedis {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			fmt.Printf("❌ Failed to connect redis: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()
		store := redis.NewStateStore(client, cfg.Redis.KeyPrefix+":replay", cfg.Dedup.TTL)
		cache, notified = store, store
		fmt.Println("✅ Redis state store initialized")
	} else {
		cache, notified = alert.NewMemoryFieldCache(), alert.NewMemoryNotifiedSet(cfg.Dedup.TTL)
	}

	keyFormat, err := alert.ParseKeyFormat(cfg.Dedup.KeyFormat)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	log := logger.NewNopLogger()
	notifier := alert.NewNotifier(cache, notified, printDispatcher{},
		alert.NewRecipientBook(cfg.Alerts.QAEmails, cfg.Alerts.ModificationEmails, cfg.Alerts.PackingEmails),
		keyFormat, log)
	engine := routers.SetupRoutes(cfg.App.Name, webhook.NewWebhookHandler(notifier, log),
		notification.NewNotificationHandler(nil, log), log)

	// 4. 逐条回放
	successCount, failureCount := 0, 0
	for i, tc := range testCases {
		fmt.Printf("\n[Delivery %d/%d] %s\n", i+1, len(testCases), tc.Name)
		fmt.Println("----------------------------------------")

		code, message := post(engine, tc.Payload)
		fmt.Printf("  ← %d %s\n", code, message)

		if tc.Expect != "" && tc.Expect != message {
			fmt.Printf("❌ FAILED: expected %q\n", tc.Expect)
			failureCount++
			continue
		}
		successCount++
	}

	// 5. 汇总
	fmt.Println("\n========================================")
	fmt.Printf("Total: %d, Passed: %d ✅, Failed: %d ❌\n", len(testCases), successCount, failureCount)
	fmt.Println("========================================")

	if failureCount > 0 {
		os.Exit(1)
	}
}

// post 通过 HTTP 路由处理一次推送，返回状态码和 meta.message
func post(engine http.Handler, payload []byte) (int, string) {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp ginx.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		return w.Code, w.Body.String()
	}
	return w.Code, resp.Meta.Message
}

// loadTestCases 从 JSON 文件加载推送序列
func loadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read testcase file: %w", err)
	}

	var testCases []TestCase
	if err := json.Unmarshal(data, &testCases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal testcase: %w", err)
	}

	return testCases, nil
}
