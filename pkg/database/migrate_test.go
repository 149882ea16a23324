package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func TestMigrations_EmbeddedPairs(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("读取嵌入迁移失败: %v", err)
	}
	ups, downs := 0, 0
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups++
		case strings.HasSuffix(n, ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("迁移文件应成对出现，实际 up=%d down=%d", ups, downs)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("iofs.New 失败: %v", err)
	}
	defer src.Close()
	first, err := src.First()
	if err != nil || first != 1 {
		t.Errorf("期望首个版本为 1，实际: %d, %v", first, err)
	}
}

func TestMigrations_OwnVersionTable(t *testing.T) {
	if MigrationsTable == postgres.DefaultMigrationsTable {
		t.Fatalf("版本表不应使用默认名 %q", postgres.DefaultMigrationsTable)
	}
	names, _ := fs.Glob(migrationsFS, "migrations/*.sql")
	for _, n := range names {
		body, err := fs.ReadFile(migrationsFS, n)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", n, err)
		}
		if strings.Contains(string(body), MigrationsTable) {
			t.Errorf("%s 不应操作版本表", n)
		}
	}
}
