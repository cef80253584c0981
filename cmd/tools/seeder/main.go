// Command seeder loads a demo shop with products, discounts, coupons, and a
// bundle so the calculate endpoint can be exercised locally.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	shopID := seedShop(ctx, conn)
	log.Printf("Using shop %s", shopID)

	productIDs := seedProducts(ctx, conn, shopID)
	seedCustomers(ctx, conn, shopID)
	seedDiscounts(ctx, conn, shopID, productIDs)
	seedCoupons(ctx, conn, shopID, productIDs)
	seedBundle(ctx, conn, shopID, productIDs)

	log.Println("Seeding completed successfully!")
}

func seedShop(ctx context.Context, conn *pgx.Conn) string {
	const tierSettings = `{
		"enabled": true,
		"base": {"kind": "percentage", "percentBps": 200, "appliesTo": "all_products"},
		"tiers": [
			{"label": "gold", "minSpent": 50000, "minOrders": 5, "kind": "percentage", "percentBps": 1000},
			{"label": "silver", "minSpent": 20000, "minOrders": 2, "kind": "percentage", "percentBps": 500}
		]
	}`
	var id string
	err := conn.QueryRow(ctx, `
		INSERT INTO shops (name, currency, tax_rate_bps, prices_include_tax, tier_settings)
		VALUES ('Demo Shop', 'USD', 825, FALSE, $1)
		RETURNING id`, tierSettings).Scan(&id)
	if err != nil {
		log.Fatalf("Failed to seed shop: %v", err)
	}
	return id
}

func seedProducts(ctx context.Context, conn *pgx.Conn, shopID string) map[string]string {
	products := []struct {
		Key       string
		Name      string
		SKU       string
		Price     int64
		Inventory int32
	}{
		{"mug", "Stoneware Mug", "MUG-001", 5000, 120},
		{"plate", "Dinner Plate", "PLT-001", 12000, 80},
		{"bowl", "Soup Bowl", "BWL-001", 8000, 95},
		{"sticker", "Logo Sticker", "STK-001", 500, 1000},
		{"shirt", "Crew T-Shirt", "TSH-001", 15000, 0},
	}
	ids := make(map[string]string, len(products))
	log.Println("Seeding products...")
	for _, p := range products {
		var id string
		err := conn.QueryRow(ctx, `
			INSERT INTO products (shop_id, name, sku, price, inventory)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`, shopID, p.Name, p.SKU, p.Price, p.Inventory).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.Name, err)
		}
		ids[p.Key] = id
	}

	variants := []struct {
		Product   string
		Name      string
		SKU       string
		Price     int64
		Inventory int32
		Position  int32
	}{
		{"shirt", "S", "TSH-001-S", 15000, 12, 0},
		{"shirt", "M", "TSH-001-M", 15000, 7, 1},
		{"shirt", "L", "TSH-001-L", 16000, 0, 2},
	}
	for _, v := range variants {
		_, err := conn.Exec(ctx, `
			INSERT INTO product_variants (product_id, name, sku, price, inventory, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			ids[v.Product], v.Name, v.SKU, v.Price, v.Inventory, v.Position)
		if err != nil {
			log.Fatalf("Failed to seed variant %s/%s: %v", v.Product, v.Name, err)
		}
	}
	return ids
}

func seedCustomers(ctx context.Context, conn *pgx.Conn, shopID string) {
	customers := []struct {
		Email      string
		TotalSpent int64
		OrderCount int32
		Tier       string
	}{
		{"gold@example.com", 72000, 9, "gold"},
		{"silver@example.com", 26000, 3, "silver"},
		{"new@example.com", 0, 0, ""},
	}
	log.Println("Seeding customers...")
	for _, c := range customers {
		_, err := conn.Exec(ctx, `
			INSERT INTO customers (shop_id, email, total_spent, order_count, tier)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''))`,
			shopID, c.Email, c.TotalSpent, c.OrderCount, c.Tier)
		if err != nil {
			log.Fatalf("Failed to seed customer %s: %v", c.Email, err)
		}
	}
}

func seedDiscounts(ctx context.Context, conn *pgx.Conn, shopID string, products map[string]string) {
	discounts := []struct {
		Title      string
		Kind       string
		Params     string
		MinOrder   int64
		CanCombine bool
		Priority   int32
	}{
		{"Spring Sale 10%", "percentage", `{"bps": 1000}`, 0, true, 10},
		{"Buy 2 Get 1 Free", "buy_x_get_y", `{"buyQty": 2, "getQty": 1, "discountBps": 10000}`, 0, false, 20},
		{"Every 3rd Item Half Off", "nth_item_discount", `{"nth": 3, "discountBps": 5000}`, 0, true, 5},
		{"Volume Deal", "volume_discount", `{"rules": [{"minQty": 5, "discountBps": 500}, {"minQty": 10, "discountBps": 1000}]}`, 0, true, 1},
	}
	log.Println("Seeding discounts...")
	for _, d := range discounts {
		_, err := conn.Exec(ctx, `
			INSERT INTO discounts (shop_id, title, kind, params, min_order_amount, can_combine, priority)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			shopID, d.Title, d.Kind, d.Params, d.MinOrder, d.CanCombine, d.Priority)
		if err != nil {
			log.Fatalf("Failed to seed discount %s: %v", d.Title, err)
		}
	}

	_, err := conn.Exec(ctx, `
		INSERT INTO discounts (shop_id, title, kind, params, min_order_amount, can_combine, priority)
		VALUES ($1, 'Free Sticker Over 300', 'free_gift',
		        json_build_object('productId', $2::uuid, 'condition', 'min_order_amount')::jsonb,
		        30000, TRUE, 0)`, shopID, products["sticker"])
	if err != nil {
		log.Fatalf("Failed to seed gift discount: %v", err)
	}
}

func seedCoupons(ctx context.Context, conn *pgx.Conn, shopID string, products map[string]string) {
	log.Println("Seeding coupons...")
	_, err := conn.Exec(ctx, `
		INSERT INTO coupons (shop_id, code, title, kind, params, min_order, enable_customer_bonus, customer_bonus_bps)
		VALUES ($1, 'SAVE10', 'Save 10%', 'percentage', '{"bps": 1000}', 20000, TRUE, 500)`,
		shopID)
	if err != nil {
		log.Fatalf("Failed to seed coupon SAVE10: %v", err)
	}
	_, err = conn.Exec(ctx, `
		INSERT INTO coupons (shop_id, code, title, kind, params, gift)
		VALUES ($1, 'GIFTME', 'Free Sticker', 'fixed', '{"amount": 100}',
		        json_build_object('productId', $2::uuid, 'condition', 'min_order_amount', 'conditionAmount', 10000)::jsonb)`,
		shopID, products["sticker"])
	if err != nil {
		log.Fatalf("Failed to seed coupon GIFTME: %v", err)
	}
}

func seedBundle(ctx context.Context, conn *pgx.Conn, shopID string, products map[string]string) {
	log.Println("Seeding bundle...")
	var bundleID string
	err := conn.QueryRow(ctx, `
		INSERT INTO bundles (shop_id, name, price)
		VALUES ($1, 'Dinner Set', 15000)
		RETURNING id`, shopID).Scan(&bundleID)
	if err != nil {
		log.Fatalf("Failed to seed bundle: %v", err)
	}
	for _, key := range []string{"plate", "bowl"} {
		_, err := conn.Exec(ctx, `
			INSERT INTO bundle_items (bundle_id, product_id, qty)
			VALUES ($1, $2, 1)`, bundleID, products[key])
		if err != nil {
			log.Fatalf("Failed to seed bundle item %s: %v", key, err)
		}
	}
}
