package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/juanalonso3/webwatch/internal/targets"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	file := strings.TrimSpace(os.Getenv("TARGETS_FILE"))
	if file == "" {
		file = "website_list.txt"
		warn("TARGETS_FILE empty; assuming " + file)
	}
	list, err := targets.Load(file)
	if err != nil {
		fail("cannot read targets file: " + err.Error())
	}
	if len(list) == 0 {
		fail(file + " contains no targets (blank lines and # comments are skipped).")
	}
	ok(fmt.Sprintf("%s: %d target(s)", file, len(list)))
	for _, t := range list {
		if !strings.HasPrefix(t, "http://") && !strings.HasPrefix(t, "https://") {
			warn("target without http(s) scheme: " + t)
		}
	}

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	if admin == "" {
		warn("ADMIN_API_KEYS empty — admin routes will accept unauthenticated requests.")
	}
	if pub == "" {
		warn("PUBLIC_API_KEYS empty — read routes will accept unauthenticated requests.")
	}
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if w := strings.TrimSpace(os.Getenv("WORKERS")); w != "" {
		if n, err := strconv.Atoi(w); err != nil || n < 1 {
			fail("WORKERS must be a positive integer, got " + w)
		}
	}
	if r := strings.TrimSpace(os.Getenv("MAX_RETRIES")); r != "" {
		if n, err := strconv.Atoi(r); err != nil || n < 0 {
			fail("MAX_RETRIES must be a non-negative integer, got " + r)
		}
	}
	if iv := strings.TrimSpace(os.Getenv("CHECK_INTERVAL")); iv != "" {
		if _, err := time.ParseDuration(iv); err != nil {
			fail("CHECK_INTERVAL is not a duration (e.g. 30s, 5m): " + iv)
		}
	}

	if addr := strings.TrimSpace(os.Getenv("ADDR")); addr == "" {
		warn("ADDR empty; the API will bind its default address.")
	} else {
		ok("ADDR=" + addr)
	}

	if db := strings.TrimSpace(os.Getenv("DATABASE_URL")); db == "" {
		warn("DATABASE_URL empty — the latest snapshot is kept in memory only.")
	} else {
		ok("DATABASE_URL present")
	}

	if allowed := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); allowed == "" {
		warn("ALLOWED_ORIGINS empty — CORS will allow any origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + allowed)
	}

	ok("preflight passed")
}
