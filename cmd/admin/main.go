package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"resumesentry/internal/auth"
	"resumesentry/internal/config"
	"resumesentry/internal/database"
)

func main() {
	var (
		email   = flag.String("email", "", "初始管理员邮箱（必填）")
		name    = flag.String("name", "", "管理员姓名（必填）")
		dbHost  = flag.String("db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
		dbPort  = flag.Int("db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
		dbName  = flag.String("db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
		dbUser  = flag.String("db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
		dbPass  = flag.String("db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
		sslMode = flag.String("db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")
	)
	flag.Parse()

	e := strings.TrimSpace(strings.ToLower(*email))
	if e == "" {
		log.Fatal("missing required flag: --email")
	}
	n := strings.TrimSpace(*name)
	if n == "" {
		log.Fatal("missing required flag: --name")
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := db.AutoMigrate(&database.Admin{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	var existing database.Admin
	switch err := db.Where("email = ?", e).First(&existing).Error; {
	case err == nil:
		log.Fatalf("admin %q already exists", e)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Fatalf("query admin: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin := database.Admin{
		Name:         n,
		Email:        e,
		PasswordHash: hashed,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}

	fmt.Printf("已创建初始管理员账号：\n")
	fmt.Printf("邮箱: %s\n", e)
	fmt.Printf("初始密码: %s\n", password)
	fmt.Printf("提示：请立即登录并修改密码（该密码仅显示一次）。\n")
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("DB_NAME")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("DB_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("DB_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if strings.TrimSpace(password) == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
