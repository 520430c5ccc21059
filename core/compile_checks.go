package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Clock           = ClockFunc(nil)
	_ UpsertLocker    = (*MemoryUpsertLocker)(nil)
	_ MetricsRecorder = (*NopMetricsRecorder)(nil)
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ OptionsResolver = (*GoOptionsResolver)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
