package constants

// 支付状态常量
const (
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// 支付事件常量
const (
	PaymentEventPaid     = "paid"
	PaymentEventRefunded = "refunded"
)

// NativeAsset 原生币哨兵标识（原生币没有合约地址，使用固定占位值）
const NativeAsset = "native"

// 兑换实现引用常量
const (
	ExchangeRefAMM = "amm/v2"
)

// 配置项键名常量
const (
	SettingStableAsset   = "stable_asset"
	SettingPayoutWallet  = "payout_wallet"
	SettingEngineAccount = "engine_account"
	SettingExchangeRef   = "exchange_ref"
	SettingRegistryRef   = "registry_ref"
	SettingNotifyURL     = "notify_url"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskPaymentNotify = "payment:notify"
)
