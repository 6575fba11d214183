// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// Config 审计工具配置
type Config struct {
	Title   string      `json:"title,omitempty"`
	ChainID int64       `json:"chainID,omitempty"`
	Log     *Log        `json:"log,omitempty"`
	Era     []EraConfig `json:"era,omitempty"`
	Ledger  *Ledger     `json:"ledger,omitempty"`
	Backend *Backend    `json:"backend,omitempty"`
	Metrics *Metrics    `json:"metrics,omitempty"`
}

// Log 日志配置
type Log struct {
	// 日志级别，支持debug(dbug)/info/warn/error(eror)/crit
	Loglevel        string `json:"loglevel,omitempty"`
	LogConsoleLevel string `json:"logConsoleLevel,omitempty"`
	// 日志文件名，可带目录，所有生成的日志文件都放到此目录下
	LogFile string `json:"logFile,omitempty"`
	// 单个日志文件的最大值（单位：兆）
	MaxFileSize uint32 `json:"maxFileSize,omitempty"`
	// 最多保存的历史日志文件个数
	MaxBackups uint32 `json:"maxBackups,omitempty"`
	// 最多保存的历史日志消息（单位：天）
	MaxAge uint32 `json:"maxAge,omitempty"`
	// 日志文件名是否使用本地时间（否则使用UTC时间）
	LocalTime bool `json:"localTime,omitempty"`
	// 历史日志文件是否压缩（压缩格式为gz）
	Compress bool `json:"compress,omitempty"`
	// 是否打印调用源文件和行号
	CallerFile bool `json:"callerFile,omitempty"`
	// 是否打印调用方法
	CallerFunction bool `json:"callerFunction,omitempty"`
}

// EraConfig 一个era的配置项, MaxSessionID 为0表示没有上限
type EraConfig struct {
	Name         string `json:"name,omitempty"`
	MinSessionID uint64 `json:"minSessionID,omitempty"`
	MaxSessionID uint64 `json:"maxSessionID,omitempty"`
	Contract     string `json:"contract,omitempty"`
	Server       string `json:"server,omitempty"`
	SigVersion   int    `json:"sigVersion,omitempty"`
}

// Ledger 链上数据读取配置
type Ledger struct {
	RPC       string `json:"rpc,omitempty"`
	FromBlock int64  `json:"fromBlock,omitempty"`
	CacheSize int    `json:"cacheSize,omitempty"`
}

// Backend 下注记录接口配置
type Backend struct {
	URL string `json:"url,omitempty"`
	// 每秒请求数
	Rate  float64 `json:"rate,omitempty"`
	Burst int64   `json:"burst,omitempty"`
	// 请求超时（单位：秒）
	Timeout int64 `json:"timeout,omitempty"`
}

// Metrics 统计配置
type Metrics struct {
	EnableMetrics bool `json:"enableMetrics,omitempty"`
}
