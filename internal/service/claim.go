package service

import "sync"

// claimSet 进程内在途集合：同一帖子同时最多一个发布尝试。
// 只约束本进程内的重入；跨进程/重启由持久化的 publishing 状态兜底。
type claimSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newClaimSet() *claimSet { return &claimSet{ids: make(map[string]struct{})} }

// tryClaim 占用成功返回 true。插入是同步的，相对扫描循环不存在
// 第二个 tick 在首个 await 挂起期间抢到同一 id 的窗口。
func (c *claimSet) tryClaim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; ok {
		return false
	}
	c.ids[id] = struct{}{}
	return true
}

// release 无条件移除；成功和失败路径都必须走到
func (c *claimSet) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, id)
}

func (c *claimSet) held(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

func (c *claimSet) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
