// 手动修正课程报名人数
//
// 报名人数是冗余计数，正常情况下由报名事务维护。
// 此脚本用于数据导入或人工修改数据库后，按报名记录重新计算。
//
// 用法: go run scripts/recount_enrollments.go

package main

import (
	"context"
	"log"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/pkg/database"
	"onlinecourse_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("连接数据库失败", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fixed, err := repository.NewCourseRepository(db).RecountEnrollments(ctx)
	if err != nil {
		logger.Log.Fatal("重新计算报名人数失败", zap.Error(err))
	}

	logger.Log.Info("报名人数已重新计算", zap.Int64("fixedCourses", fixed))
}
