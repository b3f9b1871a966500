// 版权所有 2025 PageCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 types 定义元素缓存子系统的共享数据模型与错误类型。
本包是叶子包，不依赖任何内部包。

# 概述

自动化会话每次导航到页面后，都会发现一批可交互的 DOM 元素。
types 以封闭结构描述这些元素记录（Element）、整页元素映射
（ElementMap）以及每个位置键的缓存簿记信息（Metadata）。
字段在抓取时一次性确定，不存在运行时属性探测。

# 核心类型

  - Element：单个已发现元素的持久化记录，包含标签名、XPath、
    属性表、可见性、可交互性、视口归属与高亮索引。写入后不可变。
  - ElementMap：索引 → Element 的映射，一次抓取的完整结果。
    刷新时整体替换，从不逐条修补。
  - Metadata：位置键的簿记记录：原始地址、最近写入时间戳、
    元素数量与单调递增的版本号。
  - Error / ErrorCode：结构化错误，用于浏览器协作方边界。
    缓存内部故障只记录日志，从不向调用方传播。
*/
package types
