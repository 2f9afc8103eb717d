// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/chari00001/redit-feed/internal/models"
)

// SeedSampleData loads a small demo corpus into an empty database. A
// non-empty posts table is left untouched so the flag is safe to keep on
// across restarts.
func (db *DB) SeedSampleData(ctx context.Context) error {
	count, err := db.CountPosts(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		db.log.Debug().Int("posts", count).Msg("Skipping sample data, database not empty")
		return nil
	}

	db.log.Info().Msg("Seeding sample data")
	now := time.Now().UTC()

	posts := []models.Post{
		{
			ID: 1, UserID: 1, Title: "Go ile mikroservis mimarisi",
			Content: "Go dilinde mikroservis geliştirirken dikkat edilmesi gereken noktalar: servis keşfi, yapılandırma yönetimi ve gözlemlenebilirlik. Bu yazıda kendi deneyimlerimi paylaşıyorum.",
			Tags:    models.TagList{"golang", "yazılım", "mikroservis"},
			LikesCount: 42, CommentsCount: 11, SharesCount: 6, ViewsCount: 530,
		},
		{
			ID: 2, UserID: 1, Title: "Concurrency patterns in Go",
			Content: "Worker pools, fan-in fan-out and pipeline patterns with channels. Practical examples from production services handling thousands of requests.",
			Tags:    models.TagList{"golang", "concurrency", "programming"},
			LikesCount: 35, CommentsCount: 8, SharesCount: 4, ViewsCount: 410,
		},
		{
			ID: 3, UserID: 2, Title: "Ev yapımı ekşi mayalı ekmek",
			Content: "Ekşi maya beslemesinden pişirmeye kadar adım adım ekmek tarifi. Un seçimi, hidrasyon oranı ve fırın taşı kullanımı hakkında ipuçları.",
			Tags:    models.TagList{"yemek", "ekmek", "tarif"},
			LikesCount: 67, CommentsCount: 23, SharesCount: 12, ViewsCount: 890,
		},
		{
			ID: 4, UserID: 2, Title: "İtalyan mutfağından makarna tarifleri",
			Content: "Evde taze makarna yapımı ve klasik soslar: carbonara, cacio e pepe ve amatriciana. Malzeme seçimi ve pişirme süreleri.",
			Tags:    models.TagList{"yemek", "makarna", "tarif"},
			LikesCount: 54, CommentsCount: 17, SharesCount: 9, ViewsCount: 720,
		},
		{
			ID: 5, UserID: 3, Title: "Kapadokya gezi rehberi",
			Content: "Balon turundan yeraltı şehirlerine Kapadokya'da üç gün. Konaklama önerileri, vadiler arası yürüyüş rotaları ve fotoğraf noktaları.",
			Tags:    models.TagList{"seyahat", "gezi", "kapadokya"},
			LikesCount: 88, CommentsCount: 31, SharesCount: 19, ViewsCount: 1200,
		},
		{
			ID: 6, UserID: 3, Title: "Backpacking through the Balkans",
			Content: "Two weeks across Sarajevo, Mostar and Kotor on a budget. Bus routes, hostels and the best viewpoints along the Adriatic coast.",
			Tags:    models.TagList{"seyahat", "travel", "balkans"},
			LikesCount: 45, CommentsCount: 12, SharesCount: 8, ViewsCount: 640,
		},
		{
			ID: 7, UserID: 4, Title: "Yapay zeka ve etik",
			Content: "Makine öğrenmesi modellerinin karar süreçlerinde şeffaflık neden önemli? Önyargı, hesap verebilirlik ve regülasyon tartışmaları.",
			Tags:    models.TagList{"yapay-zeka", "teknoloji", "etik"},
			LikesCount: 29, CommentsCount: 14, SharesCount: 7, ViewsCount: 380,
		},
		{
			ID: 8, UserID: 4, Title: "Büyük dil modelleri nasıl çalışır",
			Content: "Transformer mimarisinden eğitim verisine büyük dil modellerinin temelleri. Dikkat mekanizması ve bağlam penceresi kavramları.",
			Tags:    models.TagList{"yapay-zeka", "teknoloji", "makine-öğrenmesi"},
			LikesCount: 51, CommentsCount: 19, SharesCount: 11, ViewsCount: 700,
		},
		{
			ID: 9, UserID: 5, Title: "Haftalık antrenman programı",
			Content: "Başlangıç seviyesi için dört günlük vücut geliştirme programı. Isınma, temel hareketler ve toparlanma önerileri.",
			Tags:    models.TagList{"spor", "fitness", "antrenman"},
			LikesCount: 33, CommentsCount: 9, SharesCount: 3, ViewsCount: 460,
		},
		{
			ID: 10, UserID: 5, Content: "Sabah koşusu için en iyi parkurlar ve tempolu koşuda nabız aralığı takibi üzerine kısa notlar.",
			Tags: models.TagList{"spor", "koşu"},
			LikesCount: 12, CommentsCount: 2, SharesCount: 1, ViewsCount: 150,
		},
	}

	for i := range posts {
		// Spread creation times over the last two weeks, oldest first.
		posts[i].CreatedAt = now.Add(-time.Duration(len(posts)-i) * 33 * time.Hour)
		posts[i].AllowComments = true
		if err := db.CreatePost(ctx, &posts[i]); err != nil {
			return fmt.Errorf("seed post %d: %w", posts[i].ID, err)
		}
	}

	interactions := []models.Interaction{
		{UserID: 10, PostID: 1, Type: models.InteractionLike},
		{UserID: 10, PostID: 2, Type: models.InteractionComment},
		{UserID: 10, PostID: 2, Type: models.InteractionView},
		{UserID: 10, PostID: 8, Type: models.InteractionView},
		{UserID: 11, PostID: 3, Type: models.InteractionShare},
		{UserID: 11, PostID: 4, Type: models.InteractionLike},
		{UserID: 11, PostID: 4, Type: models.InteractionComment},
		{UserID: 12, PostID: 5, Type: models.InteractionLike},
		{UserID: 12, PostID: 6, Type: models.InteractionView},
		{UserID: 12, PostID: 5, Type: models.InteractionShare},
	}
	for i, in := range interactions {
		in.Timestamp = now.Add(-time.Duration(len(interactions)-i) * 2 * time.Hour)
		if err := db.AppendInteraction(ctx, in); err != nil {
			return fmt.Errorf("seed interaction: %w", err)
		}
	}

	db.log.Info().
		Int("posts", len(posts)).
		Int("interactions", len(interactions)).
		Msg("Sample data seeded")
	return nil
}
