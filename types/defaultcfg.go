// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// DefaultConfig 内置配置, 没有指定配置文件时使用
var DefaultConfig = `
Title="betaudit"
ChainID=1

[log]
# 日志级别，支持debug(dbug)/info/warn/error(eror)/crit
loglevel = "info"
logConsoleLevel = "error"
# 日志文件名，可带目录，为空时只输出到控制台
logFile = ""
# 单个日志文件的最大值（单位：兆）
maxFileSize = 300
# 最多保存的历史日志文件个数
maxBackups = 100
# 最多保存的历史日志消息（单位：天）
maxAge = 28
# 日志文件名是否使用本地时间（否则使用UTC时间）
localTime = true
# 历史日志文件是否压缩（压缩格式为gz）
compress = true
# 是否打印调用源文件和行号
callerFile = false
# 是否打印调用方法
callerFunction = false

# 协议时期, 按 session id 划分, 区间左闭右开, 最后一个 era 的 maxSessionID 为0表示没有上限
[[era]]
name = "v1"
minSessionID = 1
maxSessionID = 2000
contract = "0xAEC1F783B29Aab2727d7C374Aa55483fe299feFa"
server = "0xCef260a5Fed7A896BBE07b933B3A5c17aEC094D8"
sigVersion = 1

[[era]]
name = "v2"
minSessionID = 2000
maxSessionID = 14000
contract = "0xaEc1f783b29aab2727d7c374aa55483fE299FEfa"
server = "0xCef260a5Fed7A896BBE07b933B3A5c17aEC094D8"
sigVersion = 2

[[era]]
name = "v3"
minSessionID = 14000
maxSessionID = 0
contract = "0xC95D227a1CF92b6FD156265AA8A3cA7c7DE0F28e"
server = "0xCef260a5Fed7A896BBE07b933B3A5c17aEC094D8"
sigVersion = 2

[ledger]
rpc = "http://localhost:8545"
# 查询合约事件的起始区块
fromBlock = 0
cacheSize = 1024

[backend]
url = "http://localhost:8080"
rate = 5
burst = 10
timeout = 30

[metrics]
enableMetrics = false
`
