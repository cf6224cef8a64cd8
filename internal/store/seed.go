package store

import "time"

// seedRecords is written on first run when no persisted store exists yet.
func seedRecords() map[string]VideoRecord {
	return map[string]VideoRecord{
		"video_1": {
			ID:          "video_1",
			Title:       "Getting Started with AI",
			Description: "Learn the basics of artificial intelligence and machine learning",
			Duration:    320,
			Thumbnail:   "/api/videos/video_1/thumbnail",
			Category:    "AI Basics",
			Tags:        []string{"ai", "machine-learning", "beginner", "introduction"},
			Views:       1250,
			CreatedAt:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		"video_2": {
			ID:          "video_2",
			Title:       "Understanding Neural Networks",
			Description: "Deep dive into how neural networks work",
			Duration:    480,
			Thumbnail:   "/api/videos/video_2/thumbnail",
			Category:    "Deep Learning",
			Tags:        []string{"neural-networks", "deep-learning", "intermediate"},
			Views:       890,
			CreatedAt:   time.Date(2024, 1, 20, 14, 30, 0, 0, time.UTC),
		},
		"video_3": {
			ID:          "video_3",
			Title:       "Computer Vision Fundamentals",
			Description: "Introduction to computer vision and image processing",
			Duration:    420,
			Thumbnail:   "/api/videos/video_3/thumbnail",
			Category:    "Computer Vision",
			Tags:        []string{"computer-vision", "image-processing", "opencv"},
			Views:       650,
			CreatedAt:   time.Date(2024, 2, 1, 9, 15, 0, 0, time.UTC),
		},
	}
}
