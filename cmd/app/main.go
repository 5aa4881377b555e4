package main

import (
	libCommons "github.com/LerianStudio/lib-commons/v2/commons"

	"github.com/drithh/news-management/internal/bootstrap"
)

// News Indexer
//
// Consumes news.created events from RabbitMQ and projects them into the
// Elasticsearch full-text search index, exactly once per event id.
func main() {
	libCommons.InitLocalEnvConfig()
	bootstrap.InitConsumer().Run()
}
