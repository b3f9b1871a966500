// 版权所有 2025 PageCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 config 提供 PageCache 的配置管理功能。

# 概述

统一加载缓存、Redis、浏览器、日志与指标配置。
优先级为默认值 → YAML 文件 → 环境变量（PAGECACHE_ 前缀），
环境变量按字段上的 env tag 递归映射，如 PAGECACHE_CACHE_BACKEND、
PAGECACHE_REDIS_ADDR。

# 使用方式

	cfg, err := config.NewLoader().
	    WithConfigPath("pagecache.yaml").
	    WithValidator(func(c *config.Config) error { return c.Validate() }).
	    Load()
*/
package config
