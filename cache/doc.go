// 版权所有 2025 PageCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 实现元素缓存子系统的两个核心组件：缓存存储（Store）
与缓存协调器（Manager），使同一页面的重复自动化运行可以跳过
昂贵的实时 DOM 抓取。

# 概述

调用方向 Manager 请求某个位置的元素；Manager 先问 Store，
未命中或强制刷新时通过注入的页面句柄触发实时抓取，抓取结果
写回 Store 后返回。每次请求相互独立，不跨请求保留状态。

# 核心类型

  - Store：键值持久化契约。Read/Write/Info/Locations/Evict/EvictAll，
    缺失一律表示为空结果而非错误，存储故障永远不会传播给调用方。
  - FileStore：内存热层 + JSON 文件持久层。每个位置键一个
    128 位内容哈希命名的条目文件，外加一份 metadata.json。
    元数据与条目在同一个键级临界区内一起变更。
  - RedisStore：同一契约的 Redis 实现（本地内存 L1 + Redis 持久层），
    面向多会话共享缓存目录的部署形态。
  - Manager：缓存协调器。持有注入的 Store 与 PageHandle，
    每个自动化会话一个实例，没有环境级单例。
  - PageHandle：协调器消费的页面句柄能力（当前地址、导航、
    实时元素抓取）。抓取失败会原样传播，因为那意味着调用方
    根本拿不到元素数据。

# 键派生

无参数时位置键就是位置字符串本身；带参数时参数名先按字典序
排序，再以 name=value&… 拼接到位置之后。同一参数集合无论传入
顺序如何都得到同一个键。持久化文件名是键的 sha256 截断 16 字节
十六进制摘要，避免文件名过长或包含非法字符。

# 使用方式

	store, err := cache.NewFileStore("cache_data", logger)
	mgr := cache.NewManager(store, handle, cache.WithLogger(logger))
	elements, err := mgr.GetElements(ctx, url, false)
*/
package cache
