// 版权所有 2025 PageCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
Package main 提供 PageCache 命令行程序入口。

# 概述

cmd/pagecache 是元素缓存子系统的可执行入口，围绕缓存预热与
运维查询提供子命令。程序支持 YAML 配置文件加载（PAGECACHE_ 环境
变量覆盖）、结构化日志（zap）与 Prometheus 指标采集。

# 主要能力

  - 子命令：warm（启动浏览器逐个导航并强制刷新缓存）、list、
    info、clear、version
  - 后端选择：按配置装配 file 或 redis 存储
  - 信号处理：warm 期间监听 SIGINT/SIGTERM 提前取消
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
