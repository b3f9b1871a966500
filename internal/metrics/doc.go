// 版权所有 2025 PageCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖
缓存与实时抓取两个维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用
promauto.With 工厂绑定注入的 Registerer，测试中可传入独立
Registry 避免全局污染。Collector 结构性地满足 cache.MetricsSink，
两个包之间没有编译期依赖。

# 主要能力

  - 缓存指标：命中、未命中、写入、清除计数，按 backend
    （file/redis）分组。
  - 抓取指标：实时 DOM 抓取总数（按 ok/error 分组）与耗时
    Histogram。
*/
package metrics
