package catalog

func sampleProducts() []Product {
	return []Product{
		{
			Name:          "AirPure Pro 智能空氣清淨機",
			Description:   "專為現代家庭設計的新一代智能空氣清淨機，配備 HEPA-13 濾網，可捕捉 99.97% 的空氣微粒，包括灰塵、花粉和寵物皮屑。",
			Price:         12800,
			Currency:      "TWD",
			StockStatus:   "有庫存",
			StockQuantity: 156,
			Category:      "家電",
			Features: []string{
				"HEPA-13 級濾網",
				"智能空氣品質偵測 (PM2.5, VOC)",
				"App 遠端控制",
				"超靜音設計 (25dB)",
				"適用 30 坪空間",
			},
			Warranty: "2年保固",
			Aliases:  []string{"airpure pro", "空氣清淨機"},
		},
		{
			Name:          "SmartWatch X1 智能手錶",
			Description:   "全方位健康監測智能手錶，支援心率、血氧、睡眠追蹤，內建 GPS 和防水功能，是您的運動健康好夥伴。",
			Price:         8990,
			Currency:      "TWD",
			StockStatus:   "有庫存",
			StockQuantity: 89,
			Category:      "穿戴裝置",
			Features: []string{
				"24小時心率監測",
				"血氧濃度偵測",
				"睡眠品質分析",
				"內建 GPS",
				"5ATM 防水",
				"7天續航力",
			},
			Warranty: "1年保固",
			Aliases:  []string{"smartwatch x1", "智能手錶"},
		},
		{
			Name:          "SoundPods Ultra 真無線藍牙耳機",
			Description:   "Hi-Fi 音質真無線藍牙耳機，支援主動降噪功能，配備觸控操作和長效電池，帶來沉浸式聆聽體驗。",
			Price:         3990,
			Currency:      "TWD",
			StockStatus:   "有庫存",
			StockQuantity: 234,
			Category:      "音訊設備",
			Features: []string{
				"主動降噪 (ANC)",
				"Hi-Fi 音質",
				"觸控操作",
				"單次續航 8 小時",
				"充電盒總續航 32 小時",
				"IPX5 防水",
			},
			Warranty: "1年保固",
			Aliases:  []string{"soundpods ultra", "無線耳機", "藍牙耳機"},
		},
		{
			Name:          "ProBook 15 輕薄筆電",
			Description:   "輕薄高效能筆記型電腦，搭載最新處理器和高解析度螢幕，適合專業人士和創作者使用。",
			Price:         42900,
			Currency:      "TWD",
			StockStatus:   "預購中",
			StockQuantity: 0,
			Category:      "電腦",
			Features: []string{
				"15.6 吋 2K IPS 螢幕",
				"第 13 代 Intel Core i7",
				"16GB DDR5 記憶體",
				"512GB NVMe SSD",
				"指紋辨識",
				"Thunderbolt 4 連接埠",
			},
			Warranty: "2年保固",
			Aliases:  []string{"probook 15", "筆記型電腦", "筆電"},
		},
	}
}

func sampleOrders() []Order {
	return []Order{
		{
			OrderID:         "ORD-2024-001",
			Status:          "已送達",
			StatusCode:      "delivered",
			Product:         "AirPure Pro 智能空氣清淨機",
			Quantity:        1,
			TotalAmount:     12800,
			OrderDate:       "2024-12-20",
			ShippingDate:    "2024-12-21",
			DeliveryDate:    "2024-12-23",
			ShippingAddress: "台北市信義區松仁路 100 號",
			TrackingNumber:  "TW123456789",
		},
		{
			OrderID:           "ORD-2024-002",
			Status:            "運送中",
			StatusCode:        "shipping",
			Product:           "SmartWatch X1 智能手錶",
			Quantity:          2,
			TotalAmount:       17980,
			OrderDate:         "2024-12-27",
			ShippingDate:      "2024-12-28",
			EstimatedDelivery: "2024-12-30",
			ShippingAddress:   "新北市板橋區中山路 50 號",
			TrackingNumber:    "TW987654321",
		},
		{
			OrderID:           "ORD-2024-003",
			Status:            "處理中",
			StatusCode:        "processing",
			Product:           "SoundPods Ultra 真無線藍牙耳機",
			Quantity:          1,
			TotalAmount:       3990,
			OrderDate:         "2024-12-29",
			EstimatedShipping: "2024-12-30",
			ShippingAddress:   "台中市西屯區台灣大道 200 號",
		},
		{
			OrderID:      "ORD-2024-004",
			Status:       "已取消",
			StatusCode:   "cancelled",
			Product:      "ProBook 15 輕薄筆電",
			Quantity:     1,
			TotalAmount:  42900,
			OrderDate:    "2024-12-15",
			CancelDate:   "2024-12-16",
			CancelReason: "客戶要求取消",
			RefundStatus: "已退款",
		},
	}
}
