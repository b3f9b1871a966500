// 版权所有 2025 PageCache Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 browser 提供缓存协调器所消费的页面句柄能力的 chromedp 实现。

# 概述

缓存核心只依赖三个原子能力：读当前地址、导航、实时抓取
可交互元素。本包用 Chrome DevTools Protocol 落地这三个能力：
注入一段 JS 遍历页面上的可交互节点，产出带 XPath、属性表、
可见性、可交互性、视口归属与高亮索引的封闭元素记录。
字段在抓取时一次性确定，下游不需要做属性探测。

# 核心类型

  - Config：浏览器配置（headless、视口、UA、代理、超时），
    DefaultConfig 返回生产可用的默认值。
  - ChromeHandle：chromedp 驱动的页面句柄，实现 cache.PageHandle。
    一个句柄对应一个浏览器标签页，Close 释放浏览器进程。

# 使用方式

	handle, err := browser.NewChromeHandle(browser.DefaultConfig(), logger)
	defer handle.Close()
	mgr := cache.NewManager(store, handle)
*/
package browser
