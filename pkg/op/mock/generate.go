package mock

//go:generate go install github.com/golang/mock/mockgen@v1.6.0
//go:generate mockgen -package mock -destination ./storage.mock.go github.com/ganhammar/openiddict-core/pkg/op ApplicationStore
//go:generate mockgen -package mock -destination ./application.mock.go github.com/ganhammar/openiddict-core/pkg/op Application
